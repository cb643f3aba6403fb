package repositories

import (
	"context"

	"github.com/soterohealth/medscribe/internal/domain/entities"
)

// SaveOptions carries identifiers to propagate onto a saved artefact.
// Empty fields are minted by the store at save time.
type SaveOptions struct {
	EncounterID   string
	CorrelationID string
}

// ArtefactRepository persists and retrieves pipeline artefacts.
type ArtefactRepository interface {
	// Save writes a new artefact of the given kind. The payload is annotated
	// with identifiers and a capture timestamp without being mutated. Returns
	// the absolute path written and the identifiers the artefact carries.
	Save(ctx context.Context, kind entities.ArtefactKind, payload interface{}, opts SaveOptions) (string, entities.RunIdentifiers, error)

	// LoadLatest returns the most recent artefact of the given kind.
	LoadLatest(ctx context.Context, kind entities.ArtefactKind) (*entities.Artefact, error)
}
