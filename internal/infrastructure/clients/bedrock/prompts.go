package bedrock

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const soapSystemPrompt = `You are a clinical documentation assistant for Australian General Practice.

Your task is to generate a SOAP note strictly from the provided encounter data.

Rules:
- Do NOT invent symptoms, diagnoses, or findings
- Use only information explicitly stated or clearly implied
- Preserve negative findings (e.g. "no vomiting")
- Use conservative clinical language ("likely", "consistent with")
- Do NOT provide medical advice beyond what the GP already said
- The output must be suitable for GP review and editing
- Follow Australian clinical documentation conventions

Return valid JSON only with keys: subjective, objective, assessment, plan.`

const decisionSupportSystemPrompt = `You are a clinical decision support assistant for Australian General Practice.

Your task is to surface clinical context from the encounter data ONLY.

CRITICAL RULES - YOU MUST NOT DIAGNOSE:
- Do NOT suggest diagnoses or diagnostic labels
- Do NOT tell the patient they "have" a condition
- Do NOT provide medical advice
- DO surface relevant context: risk factors, lifestyle contributors, red flags observed
- DO highlight what was discussed but not yet documented
- DO note absence of red flag symptoms
- Use conservative, suggestive language: "Consider", "May be relevant", "No red flags observed"

Examples of GOOD prompts:
- "No red flag symptoms detected (sudden onset, focal neurology, vomiting)."
- "Stress and poor sleep identified - known contributors to presentation."
- "Consider documenting stretching/ergonomic advice if discussed."

Examples of BAD prompts (DO NOT DO):
- "Patient has tension headaches" (diagnostic)
- "Likely caused by screen time" (diagnosis by elimination)
- "Should refer to neurology" (medical advice)

Output a JSON object with one key:
- prompts: list of 3-5 decision support suggestions (strings)`

const patientArtefactsSystemPrompt = `You write patient-facing documents for Australian General Practice.

Plain English only. NO medical jargon. Write as if talking to a friend.
Do not add advice beyond what the GP discussed in the encounter.

Return ONLY valid JSON with this schema:
{
  "patient_handout": string (take-home advice: what was discussed, what the patient can do, warning signs, next steps; 150-200 words),
  "after_visit_summary": string (friendly summary of what happened at today's visit, written from the GP to the patient; 150-200 words),
  "followup_checklist": string (printable checklist of specific at-home actions: daily actions, weekly check-ins, when to seek help; one checkbox marker per action, using the ☐ character)
}`

func buildSOAPUserPrompt(encounter json.RawMessage) string {
	return fmt.Sprintf(`Encounter data (JSON):
%s

Generate a SOAP note with the following structure:

Subjective:
- Presenting complaint
- History of presenting illness
- Associated symptoms
- Explicit negatives

Objective:
- Examination findings (if stated)
- If none stated, say "Examination not documented"

Assessment:
- GP-stated working diagnosis or impression
- Differential only if explicitly mentioned
- Avoid certainty

Plan:
- Management advice discussed
- Medications mentioned
- Follow-up or safety-netting if stated

Return valid JSON only with keys:
subjective, objective, assessment, plan`, indentEncounter(encounter))
}

func buildDecisionSupportUserPrompt(encounter json.RawMessage) string {
	return fmt.Sprintf(`Encounter data (JSON):
%s

Generate 3-5 decision support prompts that surface clinical context without diagnosing.
Focus on:
1. Red flag symptoms NOT observed (if applicable to presenting complaint)
2. Risk factors or lifestyle contributors mentioned
3. Examination/investigation gaps or absences to note
4. Advice discussed but not yet documented
5. Follow-up or safety-netting opportunities

Return valid JSON with key: prompts (list of strings)
Each prompt should start with "Consider...", "No red flags...", or "Document..."`, indentEncounter(encounter))
}

func buildPatientArtefactsUserPrompt(encounter json.RawMessage) string {
	return fmt.Sprintf(`Encounter data (JSON):
%s

Create the three patient documents described in the schema.
Plain English, NO medical terms. The checklist must be tickable on paper.
Return valid JSON only.`, indentEncounter(encounter))
}

// indentEncounter pretty-prints the payload for the prompt. Falls back to the
// raw bytes if the payload is not valid JSON; the model still sees the data.
func indentEncounter(encounter json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, encounter, "", "  "); err != nil {
		return string(encounter)
	}
	return buf.String()
}
