package ids

import (
	"time"

	"github.com/google/uuid"
)

// Generator mints encounter and correlation identifiers and capture
// timestamps. Components take it as a dependency so tests can substitute a
// deterministic implementation.
type Generator interface {
	NewEncounterID() string
	NewCorrelationID() string
	Timestamp() int64
}

// UUIDGenerator is the production Generator: UUID v4 identifiers and
// wall-clock unix seconds.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewEncounterID returns a fresh encounter identifier.
func (g *UUIDGenerator) NewEncounterID() string {
	return uuid.NewString()
}

// NewCorrelationID returns a fresh correlation identifier.
func (g *UUIDGenerator) NewCorrelationID() string {
	return uuid.NewString()
}

// Timestamp returns the current time as unix seconds.
func (g *UUIDGenerator) Timestamp() int64 {
	return time.Now().Unix()
}
