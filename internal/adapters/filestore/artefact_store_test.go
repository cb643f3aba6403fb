package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/repositories"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// fakeGenerator hands out deterministic identifiers and an advancing clock.
type fakeGenerator struct {
	encounterSeq   int
	correlationSeq int
	now            int64
}

func (g *fakeGenerator) NewEncounterID() string {
	g.encounterSeq++
	return fmt.Sprintf("enc-%04d", g.encounterSeq)
}

func (g *fakeGenerator) NewCorrelationID() string {
	g.correlationSeq++
	return fmt.Sprintf("corr-%04d", g.correlationSeq)
}

func (g *fakeGenerator) Timestamp() int64 {
	g.now++
	return g.now
}

func newTestStore(t *testing.T) (*Store, *fakeGenerator) {
	t.Helper()
	gen := &fakeGenerator{now: 1700000000}
	return NewStore(t.TempDir(), gen), gen
}

func TestSave_WritesNamedFile(t *testing.T) {
	store, _ := newTestStore(t)

	path, runIDs, err := store.Save(context.Background(), entities.ArtefactKindSOAPNote,
		map[string]string{"subjective": "headache"}, repositories.SaveOptions{})
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "soap_note_enc-0001_1700000001.json", filepath.Base(path))
	assert.Equal(t, "enc-0001", runIDs.EncounterID)
	assert.Equal(t, "corr-0001", runIDs.CorrelationID)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestSave_PropagatesProvidedIdentifiers(t *testing.T) {
	store, _ := newTestStore(t)

	path, runIDs, err := store.Save(context.Background(), entities.ArtefactKindDecisionSupport,
		map[string][]string{"prompts": {"a", "b", "c"}},
		repositories.SaveOptions{EncounterID: "E-123", CorrelationID: "C-456"})
	require.NoError(t, err)

	assert.Equal(t, "E-123", runIDs.EncounterID)
	assert.Equal(t, "C-456", runIDs.CorrelationID)
	assert.Contains(t, filepath.Base(path), "decision_support_E-123_")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "E-123", doc["encounter_id"])
	assert.Equal(t, "C-456", doc["correlation_id"])
}

func TestSave_DoesNotMutatePayload(t *testing.T) {
	store, _ := newTestStore(t)

	payload := map[string]interface{}{
		"transcript": "patient reports headache",
		"entities":   []interface{}{map[string]interface{}{"text": "headache"}},
	}
	before, err := json.Marshal(payload)
	require.NoError(t, err)

	_, _, err = store.Save(context.Background(), entities.ArtefactKindMedicalAnalysis, payload, repositories.SaveOptions{})
	require.NoError(t, err)

	after, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.NotContains(t, payload, "encounter_id")
}

func TestSave_StableKeyOrdering(t *testing.T) {
	store, _ := newTestStore(t)

	path, _, err := store.Save(context.Background(), entities.ArtefactKindSOAPNote,
		map[string]string{"plan": "rest"}, repositories.SaveOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	encIdx := strings.Index(text, `"encounter_id"`)
	corrIdx := strings.Index(text, `"correlation_id"`)
	tsIdx := strings.Index(text, `"timestamp"`)
	payloadIdx := strings.Index(text, `"soap_note"`)
	require.True(t, encIdx >= 0 && corrIdx >= 0 && tsIdx >= 0 && payloadIdx >= 0)
	assert.Less(t, encIdx, corrIdx)
	assert.Less(t, corrIdx, tsIdx)
	assert.Less(t, tsIdx, payloadIdx)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	payload := entities.SOAPNote{
		Subjective: "headache for 3 days",
		Objective:  "examination not documented",
		Assessment: "tension-type presentation",
		Plan:       "hydration, review in 2 weeks",
	}
	_, runIDs, err := store.Save(context.Background(), entities.ArtefactKindSOAPNote, payload,
		repositories.SaveOptions{EncounterID: "E-9", CorrelationID: "C-9"})
	require.NoError(t, err)

	artefact, err := store.LoadLatest(context.Background(), entities.ArtefactKindSOAPNote)
	require.NoError(t, err)

	assert.Equal(t, entities.ArtefactKindSOAPNote, artefact.Kind)
	assert.Equal(t, runIDs.EncounterID, artefact.EncounterID)
	assert.Equal(t, runIDs.CorrelationID, artefact.CorrelationID)

	var loaded entities.SOAPNote
	require.NoError(t, json.Unmarshal(artefact.Payload, &loaded))
	assert.Equal(t, payload, loaded)
}

func TestLoadLatest_PicksGreatestTimestamp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, _, err := store.Save(ctx, entities.ArtefactKindMedicalAnalysis,
			map[string]int{"sequence": i}, repositories.SaveOptions{})
		require.NoError(t, err)
	}

	artefact, err := store.LoadLatest(ctx, entities.ArtefactKindMedicalAnalysis)
	require.NoError(t, err)

	var payload map[string]int
	require.NoError(t, json.Unmarshal(artefact.Payload, &payload))
	assert.Equal(t, 3, payload["sequence"])
}

func TestLoadLatest_EmptyDirectory(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.LoadLatest(context.Background(), entities.ArtefactKindMedicalAnalysis)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestLoadLatest_IgnoresOtherKinds(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Save(ctx, entities.ArtefactKindSOAPNote, map[string]string{"plan": "x"}, repositories.SaveOptions{})
	require.NoError(t, err)

	_, err = store.LoadLatest(ctx, entities.ArtefactKindPatientArtefacts)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestLoadLatest_IgnoresTempFiles(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))
	// A half-written temp file must never be selected.
	tmpPath := filepath.Join(store.Dir(), ".soap_note-12345.tmp")
	require.NoError(t, os.WriteFile(tmpPath, []byte(`{"truncated`), 0o644))

	_, err := store.LoadLatest(ctx, entities.ArtefactKindSOAPNote)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestLoadLatest_CorruptJSON(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))

	bad := filepath.Join(store.Dir(), "soap_note_E-1_1700000500.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))

	_, err := store.LoadLatest(context.Background(), entities.ArtefactKindSOAPNote)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCorruptArtefact))
}

func TestLoadLatest_MissingIdentifiers(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))

	bad := filepath.Join(store.Dir(), "soap_note_E-1_1700000500.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"timestamp": 1700000500, "soap_note": {}}`), 0o644))

	_, err := store.LoadLatest(context.Background(), entities.ArtefactKindSOAPNote)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCorruptArtefact))
}

func TestLoadLatest_RecoversFlatAnalysisLayout(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))

	// Layout produced by the earlier pipeline: analysis fields at top level
	// next to the identifiers instead of nested under the payload key.
	flat := `{
  "encounter_id": "E-flat",
  "correlation_id": "C-flat",
  "timestamp": 1700000100,
  "transcript": "patient reports headache",
  "entities": []
}`
	path := filepath.Join(store.Dir(), "medical_analysis_E-flat_1700000100.json")
	require.NoError(t, os.WriteFile(path, []byte(flat), 0o644))

	artefact, err := store.LoadLatest(context.Background(), entities.ArtefactKindMedicalAnalysis)
	require.NoError(t, err)

	assert.Equal(t, "E-flat", artefact.EncounterID)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(artefact.Payload, &payload))
	assert.Equal(t, "patient reports headache", payload["transcript"])
	assert.NotContains(t, payload, "encounter_id")
}

func TestSave_DirectoryNotCreatable(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "outputs")
	require.NoError(t, os.WriteFile(blocker, []byte("file in the way"), 0o644))

	gen := &fakeGenerator{now: 1}
	store := NewStore(filepath.Join(blocker, "nested"), gen)

	_, _, err := store.Save(context.Background(), entities.ArtefactKindSOAPNote,
		map[string]string{}, repositories.SaveOptions{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeIO))
}

func TestSave_UnknownKind(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, err := store.Save(context.Background(), entities.ArtefactKind("bogus"), nil, repositories.SaveOptions{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestTimestampFromName(t *testing.T) {
	ts, ok := timestampFromName("soap_note", "soap_note_ab-cd_1700000123.json")
	require.True(t, ok)
	assert.Equal(t, int64(1700000123), ts)

	_, ok = timestampFromName("soap_note", "soap_note_nodigits.json")
	assert.False(t, ok)

	_, ok = timestampFromName("soap_note", "decision_support_x_1.json")
	assert.False(t, ok)
}

func TestSplitStore_ReadsAndWritesSeparateDirectories(t *testing.T) {
	analysisDir := t.TempDir()
	outputDir := t.TempDir()
	gen := &fakeGenerator{now: 1700000000}

	producer := NewStore(analysisDir, gen)
	_, runIDs, err := producer.Save(context.Background(), entities.ArtefactKindMedicalAnalysis,
		map[string]string{"transcript": "hello"}, repositories.SaveOptions{})
	require.NoError(t, err)

	store := NewSplitStore(analysisDir, outputDir, gen)

	loaded, err := store.LoadLatest(context.Background(), entities.ArtefactKindMedicalAnalysis)
	require.NoError(t, err)
	assert.Equal(t, runIDs.EncounterID, loaded.EncounterID)

	path, _, err := store.Save(context.Background(), entities.ArtefactKindSOAPNote,
		map[string]string{"subjective": "s"}, repositories.SaveOptions{
			EncounterID:   loaded.EncounterID,
			CorrelationID: loaded.CorrelationID,
		})
	require.NoError(t, err)
	assert.Equal(t, outputDir, filepath.Dir(path))

	// The note never lands in the analysis directory.
	matches, err := filepath.Glob(filepath.Join(analysisDir, "soap_note_*.json"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
