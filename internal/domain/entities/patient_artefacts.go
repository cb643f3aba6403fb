package entities

import (
	"strings"

	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// Target word range for the handout and after-visit summary. Advisory: the
// prompt asks for it, tests check it roughly, runtime does not reject.
const (
	PatientTextTargetMinWords = 150
	PatientTextTargetMaxWords = 200
)

// checklistMarkers are the checkbox styles the follow-up checklist may use.
var checklistMarkers = []string{"☐", "[ ]", "- [ ]"}

// PatientArtefacts are the patient-facing documents for one encounter:
// a plain-English handout, an after-visit summary, and a printable
// follow-up checklist.
type PatientArtefacts struct {
	PatientHandout    string `json:"patient_handout"`
	AfterVisitSummary string `json:"after_visit_summary"`
	FollowupChecklist string `json:"followup_checklist"`
}

// Validate checks that all three documents are present.
func (p *PatientArtefacts) Validate() error {
	var missing []string
	if strings.TrimSpace(p.PatientHandout) == "" {
		missing = append(missing, "patient_handout")
	}
	if strings.TrimSpace(p.AfterVisitSummary) == "" {
		missing = append(missing, "after_visit_summary")
	}
	if strings.TrimSpace(p.FollowupChecklist) == "" {
		missing = append(missing, "followup_checklist")
	}
	if len(missing) > 0 {
		return apperrors.NewSchemaValidationError("patient artefacts missing fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// ChecklistHasMarkers reports whether the follow-up checklist contains at
// least one checkbox-style marker.
func (p *PatientArtefacts) ChecklistHasMarkers() bool {
	for _, m := range checklistMarkers {
		if strings.Contains(p.FollowupChecklist, m) {
			return true
		}
	}
	return false
}

// WordCount counts whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
