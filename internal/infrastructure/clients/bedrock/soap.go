package bedrock

import (
	"context"
	"encoding/json"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/providers"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// GenerateSOAPNote generates the structured clinical note from the encounter
// payload.
func (c *Client) GenerateSOAPNote(ctx context.Context, encounter json.RawMessage) (*entities.SOAPNote, error) {
	text, err := c.invoke(ctx, c.cfg.NoteModelID, soapSystemPrompt, buildSOAPUserPrompt(encounter), c.cfg.NoteTemperature, c.cfg.NoteMaxTokens)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, apperrors.NewResponseParseError("no JSON object in soap note response", err)
	}

	var note entities.SOAPNote
	if err := json.Unmarshal(raw, &note); err != nil {
		return nil, apperrors.NewResponseParseError("soap note response does not decode", err)
	}
	if err := note.Validate(); err != nil {
		return nil, err
	}
	return &note, nil
}

var _ providers.NoteGenerator = (*Client)(nil)
