package ids

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncounterID_IsValidUUID(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.NewEncounterID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Len(t, id, 36)
}

func TestNewCorrelationID_IsValidUUID(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.NewCorrelationID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestGeneratedIDsAreUnique(t *testing.T) {
	g := NewUUIDGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		seen[g.NewEncounterID()] = struct{}{}
		seen[g.NewCorrelationID()] = struct{}{}
	}
	assert.Len(t, seen, 100)
}

func TestTimestamp_IsCurrentUnixSeconds(t *testing.T) {
	g := NewUUIDGenerator()

	before := time.Now().Unix()
	ts := g.Timestamp()
	after := time.Now().Unix()

	assert.GreaterOrEqual(t, ts, before)
	assert.LessOrEqual(t, ts, after)
}
