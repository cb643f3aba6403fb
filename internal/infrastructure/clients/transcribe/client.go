// Package transcribe runs medical transcription jobs with speaker
// diarization and assembles the transcript for downstream analysis.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstranscribe "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/providers"
	"github.com/soterohealth/medscribe/pkg/config"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
	"github.com/soterohealth/medscribe/pkg/retry"
)

// JobAPI is the slice of the Transcribe API the client uses.
type JobAPI interface {
	StartMedicalTranscriptionJob(ctx context.Context, params *awstranscribe.StartMedicalTranscriptionJobInput, optFns ...func(*awstranscribe.Options)) (*awstranscribe.StartMedicalTranscriptionJobOutput, error)
	GetMedicalTranscriptionJob(ctx context.Context, params *awstranscribe.GetMedicalTranscriptionJobInput, optFns ...func(*awstranscribe.Options)) (*awstranscribe.GetMedicalTranscriptionJobOutput, error)
}

// ObjectFetcher retrieves the finished transcript document from storage.
type ObjectFetcher interface {
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// transcriptionOutputKey is the prefix Transcribe writes results under.
const transcriptionOutputKey = "transcription-output/"

// Client starts a transcription job per recording and polls it to completion.
type Client struct {
	api     JobAPI
	fetcher ObjectFetcher
	cfg     config.TranscriptionConfig
	poll    retry.Config
}

// NewClient creates a transcription client.
func NewClient(api JobAPI, fetcher ObjectFetcher, cfg config.TranscriptionConfig) (*Client, error) {
	if api == nil {
		return nil, errors.New("transcribe job API is required")
	}
	if fetcher == nil {
		return nil, errors.New("transcript object fetcher is required")
	}
	return &Client{api: api, fetcher: fetcher, cfg: cfg, poll: retry.JobPollConfig()}, nil
}

// TranscribeMedical runs one job over the uploaded audio and returns the
// transcript with speaker segments. Entity detection happens elsewhere; the
// returned analysis carries no entities.
func (c *Client) TranscribeMedical(ctx context.Context, mediaURI string) (*entities.MedicalAnalysis, error) {
	jobName := fmt.Sprintf("%s-%d", c.cfg.JobNamePrefix, time.Now().Unix())

	_, err := c.api.StartMedicalTranscriptionJob(ctx, &awstranscribe.StartMedicalTranscriptionJobInput{
		MedicalTranscriptionJobName: aws.String(jobName),
		Media:                       &types.Media{MediaFileUri: aws.String(mediaURI)},
		OutputBucketName:            aws.String(c.cfg.S3Bucket),
		OutputKey:                   aws.String(transcriptionOutputKey),
		LanguageCode:                types.LanguageCodeEnUs,
		Specialty:                   types.Specialty(c.cfg.Specialty),
		Type:                        types.Type(c.cfg.Type),
		Settings: &types.MedicalTranscriptionSetting{
			ShowSpeakerLabels: aws.Bool(true),
			MaxSpeakerLabels:  aws.Int32(int32(c.cfg.MaxSpeakers)),
		},
	})
	if err != nil {
		return nil, apperrors.NewExternalError("start medical transcription job "+jobName, err)
	}
	log.Info().Str("job", jobName).Str("media_uri", mediaURI).Msg("transcription job started")

	job, err := c.awaitJob(ctx, jobName)
	if err != nil {
		return nil, err
	}

	if job.Transcript == nil || job.Transcript.TranscriptFileUri == nil {
		return nil, apperrors.NewExternalError("transcription job "+jobName+" completed without a transcript URI", nil)
	}

	bucket, key, err := parseTranscriptURI(aws.ToString(job.Transcript.TranscriptFileUri))
	if err != nil {
		return nil, err
	}

	body, err := c.fetcher.FetchObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	analysis, err := assembleAnalysis(body)
	if err != nil {
		return nil, err
	}
	analysis.SourceAudio = mediaURI
	analysis.TranscribeJob = jobName

	log.Info().
		Str("job", jobName).
		Int("transcript_chars", len(analysis.Transcript)).
		Int("speaker_segments", len(analysis.SpeakerSegments)).
		Msg("transcription job completed")
	return analysis, nil
}

// awaitJob polls until the job reaches a terminal status. A FAILED job is
// terminal and not retried.
func (c *Client) awaitJob(ctx context.Context, jobName string) (*types.MedicalTranscriptionJob, error) {
	var job *types.MedicalTranscriptionJob

	pollErr := retry.DoWithLog(ctx, c.poll, "transcribe-poll", func() error {
		out, err := c.api.GetMedicalTranscriptionJob(ctx, &awstranscribe.GetMedicalTranscriptionJobInput{
			MedicalTranscriptionJobName: aws.String(jobName),
		})
		if err != nil {
			return err
		}
		switch out.MedicalTranscriptionJob.TranscriptionJobStatus {
		case types.TranscriptionJobStatusCompleted, types.TranscriptionJobStatusFailed:
			job = out.MedicalTranscriptionJob
			return nil
		default:
			return fmt.Errorf("job %s still %s", jobName, out.MedicalTranscriptionJob.TranscriptionJobStatus)
		}
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Debug().Int("attempt", attempt).Dur("next_delay", nextDelay).Str("job", jobName).Msg(err.Error())
	})
	if pollErr != nil {
		return nil, apperrors.NewExternalError("transcription job "+jobName+" did not finish", pollErr)
	}

	if job.TranscriptionJobStatus == types.TranscriptionJobStatusFailed {
		reason := aws.ToString(job.FailureReason)
		if reason == "" {
			reason = "unknown error"
		}
		return nil, apperrors.NewExternalError("transcription job "+jobName+" failed: "+reason, nil)
	}
	return job, nil
}

var (
	_ providers.Transcriber = (*Client)(nil)
	_ JobAPI                = (*awstranscribe.Client)(nil)
)
