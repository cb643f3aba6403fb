package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) UploadAudio(ctx context.Context, localPath, key string) (string, error) {
	args := m.Called(ctx, localPath, key)
	return args.String(0), args.Error(1)
}

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) TranscribeMedical(ctx context.Context, mediaURI string) (*entities.MedicalAnalysis, error) {
	args := m.Called(ctx, mediaURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MedicalAnalysis), args.Error(1)
}

type MockEntityExtractor struct {
	mock.Mock
}

func (m *MockEntityExtractor) DetectEntities(ctx context.Context, text string) ([]entities.MedicalEntity, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.MedicalEntity), args.Error(1)
}

func TestProcessRecording(t *testing.T) {
	media := new(MockMediaStore)
	transcriber := new(MockTranscriber)
	extractor := new(MockEntityExtractor)
	repo := new(MockArtefactRepo)

	analysis := &entities.MedicalAnalysis{Transcript: "patient reports headache"}
	detected := []entities.MedicalEntity{{Text: "headache", Category: "MEDICAL_CONDITION", Score: 0.97}}
	wantIDs := entities.RunIdentifiers{EncounterID: "enc-9", CorrelationID: "corr-9"}

	media.On("UploadAudio", mock.Anything, "/recordings/visit.m4a", mock.MatchedBy(func(key string) bool {
		return len(key) > 0
	})).Return("s3://clinic-audio/recordings/visit.m4a", nil)
	transcriber.On("TranscribeMedical", mock.Anything, "s3://clinic-audio/recordings/visit.m4a").Return(analysis, nil)
	extractor.On("DetectEntities", mock.Anything, "patient reports headache").Return(detected, nil)
	repo.On("Save", mock.Anything, entities.ArtefactKindMedicalAnalysis, mock.MatchedBy(func(payload interface{}) bool {
		a, ok := payload.(*entities.MedicalAnalysis)
		return ok && len(a.Entities) == 1 && a.Entities[0].Text == "headache"
	}), mock.Anything).Return("/out/analysis.json", wantIDs, nil)

	svc := NewTranscriptionService(media, transcriber, extractor, repo, nil)
	path, runIDs, err := svc.ProcessRecording(context.Background(), "/recordings/visit.m4a")

	require.NoError(t, err)
	assert.Equal(t, "/out/analysis.json", path)
	assert.Equal(t, wantIDs, runIDs)
	repo.AssertExpectations(t)
}

func TestProcessRecording_UploadFailure(t *testing.T) {
	media := new(MockMediaStore)
	transcriber := new(MockTranscriber)

	media.On("UploadAudio", mock.Anything, mock.Anything, mock.Anything).
		Return("", apperrors.NewExternalError("upload audio", errors.New("access denied")))

	svc := NewTranscriptionService(media, transcriber, new(MockEntityExtractor), new(MockArtefactRepo), nil)
	_, _, err := svc.ProcessRecording(context.Background(), "/recordings/visit.m4a")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	transcriber.AssertNotCalled(t, "TranscribeMedical", mock.Anything, mock.Anything)
}

func TestProcessAudioURI_TranscriptionFailure(t *testing.T) {
	transcriber := new(MockTranscriber)
	extractor := new(MockEntityExtractor)
	repo := new(MockArtefactRepo)

	transcriber.On("TranscribeMedical", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewExternalError("transcription job failed", nil))

	svc := NewTranscriptionService(new(MockMediaStore), transcriber, extractor, repo, nil)
	_, _, err := svc.ProcessAudioURI(context.Background(), "s3://clinic-audio/recordings/visit.m4a")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	extractor.AssertNotCalled(t, "DetectEntities", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessAudioURI_EntityDetectionFailure(t *testing.T) {
	transcriber := new(MockTranscriber)
	extractor := new(MockEntityExtractor)
	repo := new(MockArtefactRepo)

	transcriber.On("TranscribeMedical", mock.Anything, mock.Anything).
		Return(&entities.MedicalAnalysis{Transcript: "text"}, nil)
	extractor.On("DetectEntities", mock.Anything, "text").
		Return(nil, apperrors.NewExternalError("detect medical entities", errors.New("throttled")))

	svc := NewTranscriptionService(new(MockMediaStore), transcriber, extractor, repo, nil)
	_, _, err := svc.ProcessAudioURI(context.Background(), "s3://clinic-audio/recordings/visit.m4a")

	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
