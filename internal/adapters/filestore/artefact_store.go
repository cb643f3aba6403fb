package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/repositories"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
	"github.com/soterohealth/medscribe/pkg/ids"
)

// Store persists artefacts as JSON files named
// {kind}_{encounter_id}_{timestamp}.json inside a single output directory.
// Writes go to a temp file in the same directory and are renamed into place,
// so a concurrent LoadLatest never observes a partial artefact.
type Store struct {
	dir     string
	readDir string
	ids     ids.Generator
}

// NewStore creates a store writing into dir. The directory is created on
// first save if it does not exist.
func NewStore(dir string, gen ids.Generator) *Store {
	return &Store{dir: dir, readDir: dir, ids: gen}
}

// NewSplitStore creates a store that loads artefacts from readDir but writes
// into writeDir, for runs consuming an analysis produced elsewhere.
func NewSplitStore(readDir, writeDir string, gen ids.Generator) *Store {
	return &Store{dir: writeDir, readDir: readDir, ids: gen}
}

// Dir returns the output directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// envelopeHead fixes the field order of the identifier block so saved files
// diff cleanly.
type envelopeHead struct {
	EncounterID   string `json:"encounter_id"`
	CorrelationID string `json:"correlation_id"`
	Timestamp     int64  `json:"timestamp"`
}

// Save implements repositories.ArtefactRepository.
func (s *Store) Save(ctx context.Context, kind entities.ArtefactKind, payload interface{}, opts repositories.SaveOptions) (string, entities.RunIdentifiers, error) {
	if !kind.Valid() {
		return "", entities.RunIdentifiers{}, apperrors.NewValidationError(fmt.Sprintf("unknown artefact kind %q", kind))
	}
	if err := ctx.Err(); err != nil {
		return "", entities.RunIdentifiers{}, apperrors.NewIOError("save aborted", err)
	}

	// Marshalling is the only read of the caller's payload; it is never
	// annotated in place.
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", entities.RunIdentifiers{}, apperrors.NewValidationError(fmt.Sprintf("payload for %s is not serializable: %v", kind, err))
	}

	runIDs := entities.RunIdentifiers{
		EncounterID:   opts.EncounterID,
		CorrelationID: opts.CorrelationID,
	}
	if runIDs.EncounterID == "" {
		runIDs.EncounterID = s.ids.NewEncounterID()
	}
	if runIDs.CorrelationID == "" {
		runIDs.CorrelationID = s.ids.NewCorrelationID()
	}
	timestamp := s.ids.Timestamp()

	doc, err := assembleDocument(kind, runIDs, timestamp, payloadJSON)
	if err != nil {
		return "", entities.RunIdentifiers{}, apperrors.NewIOError("assemble artefact document", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", entities.RunIdentifiers{}, apperrors.NewIOError(fmt.Sprintf("create output directory %s", s.dir), err)
	}

	fileName := fmt.Sprintf("%s_%s_%d.json", kind, runIDs.EncounterID, timestamp)
	finalPath := filepath.Join(s.dir, fileName)

	if err := writeAtomic(s.dir, string(kind), finalPath, doc); err != nil {
		return "", entities.RunIdentifiers{}, apperrors.NewIOError(fmt.Sprintf("write artefact %s", fileName), err)
	}

	absPath, err := filepath.Abs(finalPath)
	if err != nil {
		absPath = finalPath
	}
	return absPath, runIDs, nil
}

// assembleDocument splices the kind-specific payload key after the identifier
// block, keeping key order stable.
func assembleDocument(kind entities.ArtefactKind, runIDs entities.RunIdentifiers, timestamp int64, payloadJSON []byte) ([]byte, error) {
	head, err := json.Marshal(envelopeHead{
		EncounterID:   runIDs.EncounterID,
		CorrelationID: runIDs.CorrelationID,
		Timestamp:     timestamp,
	})
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(kind.PayloadKey())
	if err != nil {
		return nil, err
	}

	var raw bytes.Buffer
	raw.Write(head[:len(head)-1])
	raw.WriteByte(',')
	raw.Write(key)
	raw.WriteByte(':')
	raw.Write(payloadJSON)
	raw.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, raw.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// writeAtomic writes doc to a dot-prefixed temp file in dir and renames it to
// finalPath. The temp name never matches the {kind}_*.json glob, and rename
// within one directory is atomic on POSIX filesystems.
func writeAtomic(dir, kind, finalPath string, doc []byte) error {
	tmp, err := os.CreateTemp(dir, "."+kind+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// LoadLatest implements repositories.ArtefactRepository.
func (s *Store) LoadLatest(ctx context.Context, kind entities.ArtefactKind) (*entities.Artefact, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown artefact kind %q", kind))
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewIOError("load aborted", err)
	}

	pattern := filepath.Join(s.readDir, string(kind)+"_*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("list artefacts for %s", kind), err)
	}

	best := ""
	var bestTS int64 = -1
	for _, path := range matches {
		ts, ok := timestampFromName(string(kind), filepath.Base(path))
		if !ok {
			continue
		}
		switch {
		case ts > bestTS:
			best, bestTS = path, ts
		case ts == bestTS && best != "":
			if modTime(path) > modTime(best) {
				best = path
			}
		}
	}
	if best == "" {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no %s artefact found in %s", kind, s.readDir))
	}

	return s.readArtefact(best, kind)
}

func (s *Store) readArtefact(path string, kind entities.ArtefactKind) (*entities.Artefact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("read artefact %s", path), err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewCorruptArtefactError(fmt.Sprintf("artefact %s is not valid JSON", path), err)
	}

	artefact := &entities.Artefact{Kind: kind}
	if err := unmarshalRequired(doc, "encounter_id", &artefact.EncounterID); err != nil {
		return nil, apperrors.NewCorruptArtefactError(fmt.Sprintf("artefact %s missing encounter_id", path), err)
	}
	if err := unmarshalRequired(doc, "correlation_id", &artefact.CorrelationID); err != nil {
		return nil, apperrors.NewCorruptArtefactError(fmt.Sprintf("artefact %s missing correlation_id", path), err)
	}
	var ts json.Number
	if err := unmarshalRequired(doc, "timestamp", &ts); err != nil {
		return nil, apperrors.NewCorruptArtefactError(fmt.Sprintf("artefact %s missing timestamp", path), err)
	}
	tsInt, err := ts.Int64()
	if err != nil {
		return nil, apperrors.NewCorruptArtefactError(fmt.Sprintf("artefact %s has non-integer timestamp", path), err)
	}
	artefact.Timestamp = tsInt

	if payload, ok := doc[kind.PayloadKey()]; ok {
		artefact.Payload = payload
		return artefact, nil
	}

	// Older analysis artefacts merge the payload into the top level instead
	// of nesting it under the kind key. Recover those by stripping the
	// identifier fields.
	rest := make(map[string]json.RawMessage, len(doc))
	for k, v := range doc {
		switch k {
		case "encounter_id", "correlation_id", "timestamp":
		default:
			rest[k] = v
		}
	}
	if len(rest) == 0 {
		return nil, apperrors.NewCorruptArtefactError(fmt.Sprintf("artefact %s has no %s payload", path, kind.PayloadKey()), nil)
	}
	payload, err := json.Marshal(rest)
	if err != nil {
		return nil, apperrors.NewCorruptArtefactError(fmt.Sprintf("artefact %s payload not recoverable", path), err)
	}
	artefact.Payload = payload
	return artefact, nil
}

func unmarshalRequired(doc map[string]json.RawMessage, key string, dst interface{}) error {
	raw, ok := doc[key]
	if !ok {
		return fmt.Errorf("missing field %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	if s, ok := dst.(*string); ok && *s == "" {
		return fmt.Errorf("field %q is empty", key)
	}
	return nil
}

// timestampFromName extracts the trailing unix timestamp from
// {kind}_{encounter_id}_{timestamp}.json.
func timestampFromName(kind, name string) (int64, bool) {
	trimmed := strings.TrimSuffix(name, ".json")
	if trimmed == name {
		return 0, false
	}
	if !strings.HasPrefix(trimmed, kind+"_") {
		return 0, false
	}
	idx := strings.LastIndex(trimmed, "_")
	if idx < 0 || idx == len(trimmed)-1 {
		return 0, false
	}
	ts, err := strconv.ParseInt(trimmed[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

var _ repositories.ArtefactRepository = (*Store)(nil)
