package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	comprehendmedical "github.com/aws/aws-sdk-go-v2/service/comprehendmedical"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awstranscribe "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/adapters/filestore"
	"github.com/soterohealth/medscribe/internal/application/services"
	"github.com/soterohealth/medscribe/internal/infrastructure/clients/awsconf"
	"github.com/soterohealth/medscribe/internal/infrastructure/clients/comprehend"
	s3client "github.com/soterohealth/medscribe/internal/infrastructure/clients/s3"
	"github.com/soterohealth/medscribe/internal/infrastructure/clients/transcribe"
	"github.com/soterohealth/medscribe/internal/infrastructure/observability"
	"github.com/soterohealth/medscribe/pkg/config"
	"github.com/soterohealth/medscribe/pkg/ids"
)

func main() {
	var audioPath string
	var audioURI string
	var bucket string
	var outputDir string

	flag.StringVar(&audioPath, "audio", "", "Local audio file to upload and transcribe")
	flag.StringVar(&audioURI, "audio-uri", "", "s3:// URI of audio already uploaded")
	flag.StringVar(&bucket, "bucket", "", "S3 bucket for audio and transcripts (overrides TRANSCRIBE_S3_BUCKET)")
	flag.StringVar(&outputDir, "output-dir", "", "Artefact directory (overrides ARTEFACT_OUTPUT_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if bucket != "" {
		cfg.Transcription.S3Bucket = bucket
	}
	if outputDir != "" {
		cfg.Artefacts.OutputDir = outputDir
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	if audioPath == "" && audioURI == "" {
		log.Fatal().Msg("one of -audio or -audio-uri is required")
	}
	if cfg.Transcription.S3Bucket == "" {
		log.Fatal().Msg("an S3 bucket is required (TRANSCRIBE_S3_BUCKET or -bucket)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	awsCfg, err := awsconf.NewLoader().Load(ctx, cfg.AWS.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	media, err := s3client.NewClient(awss3.NewFromConfig(awsCfg), cfg.Transcription.S3Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create S3 client")
	}

	transcriber, err := transcribe.NewClient(awstranscribe.NewFromConfig(awsCfg), media, cfg.Transcription)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create transcription client")
	}

	extractor, err := comprehend.NewClient(comprehendmedical.NewFromConfig(awsCfg))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create entity extraction client")
	}

	store := filestore.NewStore(cfg.Artefacts.OutputDir, ids.NewUUIDGenerator())
	svc := services.NewTranscriptionService(media, transcriber, extractor, store, nil)

	var path string
	if audioPath != "" {
		path, _, err = svc.ProcessRecording(ctx, audioPath)
	} else {
		path, _, err = svc.ProcessAudioURI(ctx, audioURI)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("transcription workflow failed")
	}

	log.Info().Str("path", path).Msg("medical analysis ready for the note pipeline")
}
