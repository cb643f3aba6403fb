package entities

import (
	"time"

	"github.com/google/uuid"
)

// RunStage identifies one stage of the note pipeline.
type RunStage string

const (
	RunStageLoadAnalysis     RunStage = "load_analysis"
	RunStageSOAPNote         RunStage = "soap_note"
	RunStageDecisionSupport  RunStage = "decision_support"
	RunStagePatientArtefacts RunStage = "patient_artefacts"
)

// RunStatus is the outcome of a stage.
type RunStatus string

const (
	RunStatusStarted   RunStatus = "started"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusSkipped   RunStatus = "skipped"
)

// RunEvent is a real-time progress update for one pipeline run, published so
// observers (a dashboard, the transcription front-end) can follow a run
// without polling the artefact directory.
type RunEvent struct {
	ID            string    `json:"id"`
	EncounterID   string    `json:"encounter_id"`
	CorrelationID string    `json:"correlation_id"`
	Stage         RunStage  `json:"stage"`
	Status        RunStatus `json:"status"`
	Detail        string    `json:"detail,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewRunEvent creates a run event stamped with a fresh ID and the current time.
func NewRunEvent(ids RunIdentifiers, stage RunStage, status RunStatus, detail string) *RunEvent {
	return &RunEvent{
		ID:            uuid.NewString(),
		EncounterID:   ids.EncounterID,
		CorrelationID: ids.CorrelationID,
		Stage:         stage,
		Status:        status,
		Detail:        detail,
		Timestamp:     time.Now(),
	}
}
