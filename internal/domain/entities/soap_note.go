package entities

import (
	"strings"

	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// SOAPNote is the structured clinical note generated from an encounter.
type SOAPNote struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// Validate checks that all four sections are present.
func (n *SOAPNote) Validate() error {
	var missing []string
	if strings.TrimSpace(n.Subjective) == "" {
		missing = append(missing, "subjective")
	}
	if strings.TrimSpace(n.Objective) == "" {
		missing = append(missing, "objective")
	}
	if strings.TrimSpace(n.Assessment) == "" {
		missing = append(missing, "assessment")
	}
	if strings.TrimSpace(n.Plan) == "" {
		missing = append(missing, "plan")
	}
	if len(missing) > 0 {
		return apperrors.NewSchemaValidationError("soap note missing sections: " + strings.Join(missing, ", "))
	}
	return nil
}
