package bedrock

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/providers"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// GeneratePatientArtefacts generates the patient handout, after-visit summary
// and follow-up checklist in one call.
func (c *Client) GeneratePatientArtefacts(ctx context.Context, encounter json.RawMessage) (*entities.PatientArtefacts, error) {
	text, err := c.invoke(ctx, c.cfg.PatientModelID, patientArtefactsSystemPrompt, buildPatientArtefactsUserPrompt(encounter), c.cfg.PatientTemperature, c.cfg.PatientMaxTokens)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, apperrors.NewResponseParseError("no JSON object in patient artefacts response", err)
	}

	var pa entities.PatientArtefacts
	if err := json.Unmarshal(raw, &pa); err != nil {
		return nil, apperrors.NewResponseParseError("patient artefacts response does not decode", err)
	}
	if err := pa.Validate(); err != nil {
		return nil, err
	}

	// Length and checkbox expectations are advisory; log drift, don't reject.
	if !pa.ChecklistHasMarkers() {
		log.Warn().Msg("follow-up checklist has no checkbox markers")
	}
	return &pa, nil
}

var _ providers.PatientArtefactGenerator = (*Client)(nil)
