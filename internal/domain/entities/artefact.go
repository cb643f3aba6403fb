package entities

import "encoding/json"

// ArtefactKind identifies the kind of a persisted pipeline artefact.
type ArtefactKind string

const (
	ArtefactKindMedicalAnalysis  ArtefactKind = "medical_analysis"
	ArtefactKindSOAPNote         ArtefactKind = "soap_note"
	ArtefactKindDecisionSupport  ArtefactKind = "decision_support"
	ArtefactKindPatientArtefacts ArtefactKind = "patient_artefacts"
)

// payloadKeys maps each kind to the JSON key its payload is stored under.
var payloadKeys = map[ArtefactKind]string{
	ArtefactKindMedicalAnalysis:  "medical_analysis_results",
	ArtefactKindSOAPNote:         "soap_note",
	ArtefactKindDecisionSupport:  "decision_support",
	ArtefactKindPatientArtefacts: "patient_artefacts",
}

// Valid reports whether the kind is one of the known artefact kinds.
func (k ArtefactKind) Valid() bool {
	_, ok := payloadKeys[k]
	return ok
}

// PayloadKey returns the JSON key the kind's payload is written under.
func (k ArtefactKind) PayloadKey() string {
	return payloadKeys[k]
}

// Artefact is one persisted JSON document produced by a pipeline stage.
// Artefacts are immutable once written; a re-run produces a new artefact
// rather than overwriting an existing one.
type Artefact struct {
	Kind          ArtefactKind    `json:"-"`
	EncounterID   string          `json:"encounter_id"`
	CorrelationID string          `json:"correlation_id"`
	Timestamp     int64           `json:"timestamp"`
	Payload       json.RawMessage `json:"-"`
}

// RunIdentifiers ties every artefact of one pipeline run together.
type RunIdentifiers struct {
	EncounterID   string
	CorrelationID string
}
