package providers

import (
	"context"
	"encoding/json"

	"github.com/soterohealth/medscribe/internal/domain/entities"
)

// The generation providers turn a raw encounter payload into one derived
// document via an external text-generation service. The payload is read-only:
// implementations must not modify the bytes. None of them persist anything;
// persistence belongs to the pipeline service.

// NoteGenerator generates the structured clinical note.
type NoteGenerator interface {
	GenerateSOAPNote(ctx context.Context, encounter json.RawMessage) (*entities.SOAPNote, error)
}

// DecisionSupportGenerator generates "did you consider?" prompts.
type DecisionSupportGenerator interface {
	GenerateDecisionSupport(ctx context.Context, encounter json.RawMessage) (*entities.DecisionSupport, error)
}

// PatientArtefactGenerator generates the patient-facing documents.
type PatientArtefactGenerator interface {
	GeneratePatientArtefacts(ctx context.Context, encounter json.RawMessage) (*entities.PatientArtefacts, error)
}
