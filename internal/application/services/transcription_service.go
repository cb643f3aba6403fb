package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/providers"
	"github.com/soterohealth/medscribe/internal/domain/repositories"
	"github.com/soterohealth/medscribe/internal/infrastructure/observability"
)

// TranscriptionService produces the medical analysis artefact the note
// pipeline consumes: it uploads a recording, transcribes it with speaker
// diarization, detects clinical entities in the transcript and persists the
// combined result.
type TranscriptionService struct {
	media       providers.MediaStore
	transcriber providers.Transcriber
	extractor   providers.EntityExtractor
	repo        repositories.ArtefactRepository
	metrics     *observability.Metrics
}

// NewTranscriptionService creates the transcription workflow service.
func NewTranscriptionService(
	media providers.MediaStore,
	transcriber providers.Transcriber,
	extractor providers.EntityExtractor,
	repo repositories.ArtefactRepository,
	metrics *observability.Metrics,
) *TranscriptionService {
	return &TranscriptionService{
		media:       media,
		transcriber: transcriber,
		extractor:   extractor,
		repo:        repo,
		metrics:     metrics,
	}
}

// ProcessRecording uploads a local audio file and runs the full workflow.
func (s *TranscriptionService) ProcessRecording(ctx context.Context, localPath string) (string, entities.RunIdentifiers, error) {
	key := fmt.Sprintf("recordings/%d-%s", time.Now().Unix(), filepath.Base(localPath))
	uri, err := s.media.UploadAudio(ctx, localPath, key)
	if err != nil {
		return "", entities.RunIdentifiers{}, err
	}
	return s.ProcessAudioURI(ctx, uri)
}

// ProcessAudioURI runs the workflow over audio already in storage.
func (s *TranscriptionService) ProcessAudioURI(ctx context.Context, mediaURI string) (string, entities.RunIdentifiers, error) {
	ctx, span := observability.StartSpan(ctx, "transcription.process")
	defer span.End()

	start := time.Now()
	analysis, err := s.transcriber.TranscribeMedical(ctx, mediaURI)
	if err != nil {
		observability.RecordError(span, err)
		return "", entities.RunIdentifiers{}, err
	}

	detected, err := s.extractor.DetectEntities(ctx, analysis.Transcript)
	if err != nil {
		observability.RecordError(span, err)
		return "", entities.RunIdentifiers{}, err
	}
	analysis.Entities = detected

	// A fresh analysis starts a new run; the store mints both identifiers.
	path, runIDs, err := s.repo.Save(ctx, entities.ArtefactKindMedicalAnalysis, analysis, repositories.SaveOptions{})
	if err != nil {
		observability.RecordError(span, err)
		return "", entities.RunIdentifiers{}, err
	}
	observability.RecordArtefactWrite(ctx, s.metrics, string(entities.ArtefactKindMedicalAnalysis))

	log.Info().
		Str("encounter_id", runIDs.EncounterID).
		Str("correlation_id", runIDs.CorrelationID).
		Str("path", path).
		Int("entities", len(detected)).
		Dur("elapsed", time.Since(start)).
		Msg("medical analysis persisted")
	return path, runIDs, nil
}
