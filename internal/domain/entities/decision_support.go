package entities

import (
	"fmt"
	"strings"

	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

const (
	MinDecisionPrompts = 3
	MaxDecisionPrompts = 5
)

// SanctionedOpeners are the phrase openers the decision support prompts are
// instructed to use so they surface context without asserting a diagnosis.
// They shape the system instruction; coverage is reported, not enforced.
var SanctionedOpeners = []string{"Consider", "No red flags", "Document"}

// DecisionSupport holds "did you consider?" prompts surfaced for GP review.
type DecisionSupport struct {
	Prompts []string `json:"prompts"`
}

// Validate enforces the structural contract: 3-5 non-empty prompt strings.
// Prompt counts outside the range are a hard failure.
func (d *DecisionSupport) Validate() error {
	if d.Prompts == nil {
		return apperrors.NewSchemaValidationError("decision support response missing prompts key")
	}
	if len(d.Prompts) < MinDecisionPrompts || len(d.Prompts) > MaxDecisionPrompts {
		return apperrors.NewSchemaValidationError(fmt.Sprintf(
			"decision support requires %d-%d prompts, got %d",
			MinDecisionPrompts, MaxDecisionPrompts, len(d.Prompts),
		))
	}
	for i, p := range d.Prompts {
		if strings.TrimSpace(p) == "" {
			return apperrors.NewSchemaValidationError(fmt.Sprintf("decision support prompt %d is empty", i))
		}
	}
	return nil
}

// OpenerCoverage returns the fraction of prompts beginning with one of the
// sanctioned openers. The contract is best-effort model behaviour, so low
// coverage is logged rather than rejected.
func (d *DecisionSupport) OpenerCoverage() float64 {
	if len(d.Prompts) == 0 {
		return 0
	}
	matched := 0
	for _, p := range d.Prompts {
		for _, opener := range SanctionedOpeners {
			if strings.HasPrefix(strings.TrimSpace(p), opener) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(d.Prompts))
}
