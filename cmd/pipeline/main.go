package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/adapters/events"
	"github.com/soterohealth/medscribe/internal/adapters/filestore"
	"github.com/soterohealth/medscribe/internal/application/services"
	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/providers"
	"github.com/soterohealth/medscribe/internal/infrastructure/clients/awsconf"
	"github.com/soterohealth/medscribe/internal/infrastructure/clients/bedrock"
	"github.com/soterohealth/medscribe/internal/infrastructure/clients/redis"
	"github.com/soterohealth/medscribe/internal/infrastructure/observability"
	"github.com/soterohealth/medscribe/pkg/config"
	"github.com/soterohealth/medscribe/pkg/ids"
)

func main() {
	var decisionSupport bool
	var patientArtefacts bool
	var all bool
	var outputDir string
	var analysisDir string

	flag.BoolVar(&decisionSupport, "decision-support", false, "Generate decision support prompts")
	flag.BoolVar(&patientArtefacts, "patient-artefacts", false, "Generate patient-facing documents")
	flag.BoolVar(&all, "all", false, "Generate every downstream document")
	flag.StringVar(&outputDir, "output-dir", "", "Artefact directory (overrides ARTEFACT_OUTPUT_DIR)")
	flag.StringVar(&analysisDir, "analysis-dir", "", "Directory to read the medical analysis from (defaults to the output directory)")
	flag.Parse()

	if all {
		decisionSupport = true
		patientArtefacts = true
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if outputDir != "" {
		cfg.Artefacts.OutputDir = outputDir
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	awsCfg, err := awsconf.NewLoader().Load(ctx, cfg.AWS.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	generator, err := bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), cfg.Bedrock)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generation client")
	}

	// The event bus is optional; the pipeline runs fine without one.
	var bus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without run events")
		} else {
			defer redisClient.Close()
			bus = events.NewRedisEventBus(redisClient)
			defer bus.Close()
		}
	}

	idGen := ids.NewUUIDGenerator()
	store := filestore.NewStore(cfg.Artefacts.OutputDir, idGen)
	if analysisDir != "" && analysisDir != cfg.Artefacts.OutputDir {
		store = filestore.NewSplitStore(analysisDir, cfg.Artefacts.OutputDir, idGen)
	}
	svc := services.NewPipelineService(store, generator, generator, generator, bus, idGen, metrics)

	summary, err := svc.Run(ctx, services.PipelineOptions{
		DecisionSupport:  decisionSupport,
		PatientArtefacts: patientArtefacts,
	})
	if err != nil {
		log.Error().Err(err).Msg("pipeline run failed")
		os.Exit(1)
	}

	for _, stage := range summary.Stages {
		event := log.Info()
		if stage.Status == entities.RunStatusFailed {
			event = log.Error().Err(stage.Err)
		}
		event.Str("stage", string(stage.Stage)).Str("status", string(stage.Status)).Str("path", stage.Path).Msg("stage result")
	}

	// A requested stage that failed makes the whole invocation fail, even
	// though the other artefacts were written.
	if summary.Failed() {
		os.Exit(1)
	}
}
