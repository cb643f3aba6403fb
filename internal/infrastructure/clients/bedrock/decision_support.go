package bedrock

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/providers"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// GenerateDecisionSupport generates "did you consider?" prompts that surface
// clinical context without asserting a diagnosis.
func (c *Client) GenerateDecisionSupport(ctx context.Context, encounter json.RawMessage) (*entities.DecisionSupport, error) {
	text, err := c.invoke(ctx, c.cfg.DecisionModelID, decisionSupportSystemPrompt, buildDecisionSupportUserPrompt(encounter), c.cfg.DecisionTemperature, c.cfg.DecisionMaxTokens)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, apperrors.NewResponseParseError("no JSON object in decision support response", err)
	}

	var ds entities.DecisionSupport
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, apperrors.NewResponseParseError("decision support response does not decode", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	// The opener wording is a model-behaviour contract, not a hard check.
	if coverage := ds.OpenerCoverage(); coverage < 0.5 {
		log.Warn().
			Float64("opener_coverage", coverage).
			Msg("decision support prompts drifting from sanctioned openers")
	}
	return &ds, nil
}

var _ providers.DecisionSupportGenerator = (*Client)(nil)
