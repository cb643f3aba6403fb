// Package comprehend detects clinical entities in transcript text.
package comprehend

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	comprehendmedical "github.com/aws/aws-sdk-go-v2/service/comprehendmedical"
	"github.com/aws/aws-sdk-go-v2/service/comprehendmedical/types"
	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/providers"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// EntityAPI is the slice of the Comprehend Medical API the client uses.
type EntityAPI interface {
	DetectEntitiesV2(ctx context.Context, params *comprehendmedical.DetectEntitiesV2Input, optFns ...func(*comprehendmedical.Options)) (*comprehendmedical.DetectEntitiesV2Output, error)
}

// Client extracts medical entities from free text.
type Client struct {
	api EntityAPI
}

// NewClient creates an entity extraction client.
func NewClient(api EntityAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("comprehend medical API is required")
	}
	return &Client{api: api}, nil
}

// DetectEntities runs entity detection over text. Empty text yields no
// entities without a service call.
func (c *Client) DetectEntities(ctx context.Context, text string) ([]entities.MedicalEntity, error) {
	if text == "" {
		return nil, nil
	}

	out, err := c.api.DetectEntitiesV2(ctx, &comprehendmedical.DetectEntitiesV2Input{
		Text: aws.String(text),
	})
	if err != nil {
		return nil, apperrors.NewExternalError("detect medical entities", err)
	}

	detected := make([]entities.MedicalEntity, 0, len(out.Entities))
	for _, e := range out.Entities {
		detected = append(detected, mapEntity(e))
	}

	log.Debug().Int("entities", len(detected)).Msg("medical entities detected")
	return detected, nil
}

func mapEntity(e types.Entity) entities.MedicalEntity {
	entity := entities.MedicalEntity{
		Text:     aws.ToString(e.Text),
		Category: string(e.Category),
		Type:     string(e.Type),
		Score:    float64(aws.ToFloat32(e.Score)),
	}
	for _, trait := range e.Traits {
		entity.Traits = append(entity.Traits, string(trait.Name))
	}
	return entity
}

var (
	_ providers.EntityExtractor = (*Client)(nil)
	_ EntityAPI                 = (*comprehendmedical.Client)(nil)
)
