// Package awsconf resolves and caches AWS SDK configuration so the adapter
// clients share one credential chain and HTTP transport per region.
package awsconf

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// Loader caches resolved configurations keyed by region.
type Loader struct {
	mu    sync.Mutex
	cache map[string]aws.Config
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]aws.Config)}
}

// Load resolves the default configuration for region, reusing a cached copy
// when one exists.
func (l *Loader) Load(ctx context.Context, region string) (aws.Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cfg, ok := l.cache[region]; ok {
		return cfg, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, apperrors.NewExternalError("load AWS configuration for region "+region, err)
	}

	l.cache[region] = cfg
	return cfg, nil
}
