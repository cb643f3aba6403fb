package providers

import (
	"context"

	"github.com/soterohealth/medscribe/internal/domain/entities"
)

// MediaStore uploads encounter audio to durable storage reachable by the
// transcription service.
type MediaStore interface {
	// UploadAudio stores the local file under key and returns its URI.
	UploadAudio(ctx context.Context, localPath, key string) (string, error)
}

// Transcriber runs a medical transcription job over uploaded audio and
// returns the transcript with speaker segments.
type Transcriber interface {
	TranscribeMedical(ctx context.Context, mediaURI string) (*entities.MedicalAnalysis, error)
}

// EntityExtractor detects clinical entities in transcript text.
type EntityExtractor interface {
	DetectEntities(ctx context.Context, text string) ([]entities.MedicalEntity, error)
}
