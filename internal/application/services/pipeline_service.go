package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	"github.com/soterohealth/medscribe/internal/domain/providers"
	"github.com/soterohealth/medscribe/internal/domain/repositories"
	"github.com/soterohealth/medscribe/internal/infrastructure/observability"
	"github.com/soterohealth/medscribe/pkg/ids"
)

// PipelineOptions selects which optional stages a run executes. The note
// stage always runs.
type PipelineOptions struct {
	DecisionSupport  bool
	PatientArtefacts bool
}

// StageResult records the outcome of one pipeline stage.
type StageResult struct {
	Stage  entities.RunStage
	Status entities.RunStatus
	Path   string
	Err    error
}

// RunSummary is the outcome of one pipeline run.
type RunSummary struct {
	Identifiers entities.RunIdentifiers
	Stages      []StageResult
}

// Failed reports whether any executed stage failed.
func (s *RunSummary) Failed() bool {
	for _, stage := range s.Stages {
		if stage.Status == entities.RunStatusFailed {
			return true
		}
	}
	return false
}

// PipelineService orchestrates the note pipeline: it loads the latest
// medical analysis, generates the clinical note and the optional downstream
// documents, and persists each as its own artefact. The event bus and
// metrics are optional; a nil value disables them.
type PipelineService struct {
	repo      repositories.ArtefactRepository
	notes     providers.NoteGenerator
	decisions providers.DecisionSupportGenerator
	patients  providers.PatientArtefactGenerator
	bus       providers.EventBus
	ids       ids.Generator
	metrics   *observability.Metrics
}

// NewPipelineService creates the pipeline orchestrator.
func NewPipelineService(
	repo repositories.ArtefactRepository,
	notes providers.NoteGenerator,
	decisions providers.DecisionSupportGenerator,
	patients providers.PatientArtefactGenerator,
	bus providers.EventBus,
	idGen ids.Generator,
	metrics *observability.Metrics,
) *PipelineService {
	if idGen == nil {
		idGen = ids.NewUUIDGenerator()
	}
	return &PipelineService{
		repo:      repo,
		notes:     notes,
		decisions: decisions,
		patients:  patients,
		bus:       bus,
		ids:       idGen,
		metrics:   metrics,
	}
}

// Run executes one pipeline run. The note stage is load-bearing: if loading
// the analysis or generating the note fails, the run stops and the optional
// stages are marked skipped. Failures in the optional stages are isolated
// from each other.
func (s *PipelineService) Run(ctx context.Context, opts PipelineOptions) (*RunSummary, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.run")
	defer span.End()

	summary := &RunSummary{}

	analysis, result := s.loadAnalysis(ctx)
	summary.Stages = append(summary.Stages, result)
	if result.Status == entities.RunStatusFailed {
		observability.RecordError(span, result.Err)
		s.skipRemaining(ctx, summary, opts, entities.RunIdentifiers{})
		return summary, result.Err
	}

	runIDs := s.resolveIdentifiers(analysis)
	summary.Identifiers = runIDs
	encounter := analysis.Payload

	noteResult := s.runStage(ctx, runIDs, entities.RunStageSOAPNote, entities.ArtefactKindSOAPNote, func(ctx context.Context) (interface{}, error) {
		return s.notes.GenerateSOAPNote(ctx, encounter)
	})
	summary.Stages = append(summary.Stages, noteResult)
	if noteResult.Status == entities.RunStatusFailed {
		observability.RecordError(span, noteResult.Err)
		s.skipRemaining(ctx, summary, opts, runIDs)
		return summary, noteResult.Err
	}

	if opts.DecisionSupport {
		result := s.runStage(ctx, runIDs, entities.RunStageDecisionSupport, entities.ArtefactKindDecisionSupport, func(ctx context.Context) (interface{}, error) {
			return s.decisions.GenerateDecisionSupport(ctx, encounter)
		})
		summary.Stages = append(summary.Stages, result)
	}

	if opts.PatientArtefacts {
		result := s.runStage(ctx, runIDs, entities.RunStagePatientArtefacts, entities.ArtefactKindPatientArtefacts, func(ctx context.Context) (interface{}, error) {
			return s.patients.GeneratePatientArtefacts(ctx, encounter)
		})
		summary.Stages = append(summary.Stages, result)
	}

	log.Info().
		Str("encounter_id", runIDs.EncounterID).
		Str("correlation_id", runIDs.CorrelationID).
		Bool("failed", summary.Failed()).
		Int("stages", len(summary.Stages)).
		Msg("pipeline run finished")
	return summary, nil
}

// loadAnalysis fetches the most recent medical analysis artefact.
func (s *PipelineService) loadAnalysis(ctx context.Context) (*entities.Artefact, StageResult) {
	start := time.Now()
	analysis, err := s.repo.LoadLatest(ctx, entities.ArtefactKindMedicalAnalysis)
	if err != nil {
		observability.RecordStageMetric(ctx, s.metrics, string(entities.RunStageLoadAnalysis), string(entities.RunStatusFailed), time.Since(start))
		log.Error().Err(err).Msg("no medical analysis to process")
		return nil, StageResult{Stage: entities.RunStageLoadAnalysis, Status: entities.RunStatusFailed, Err: err}
	}

	observability.RecordStageMetric(ctx, s.metrics, string(entities.RunStageLoadAnalysis), string(entities.RunStatusSucceeded), time.Since(start))
	return analysis, StageResult{Stage: entities.RunStageLoadAnalysis, Status: entities.RunStatusSucceeded}
}

// resolveIdentifiers carries the analysis artefact's identifiers through the
// run, minting whichever are missing so every derived artefact shares them.
func (s *PipelineService) resolveIdentifiers(analysis *entities.Artefact) entities.RunIdentifiers {
	runIDs := entities.RunIdentifiers{
		EncounterID:   analysis.EncounterID,
		CorrelationID: analysis.CorrelationID,
	}
	if runIDs.EncounterID == "" {
		runIDs.EncounterID = s.ids.NewEncounterID()
	}
	if runIDs.CorrelationID == "" {
		runIDs.CorrelationID = s.ids.NewCorrelationID()
	}
	return runIDs
}

func (s *PipelineService) runStage(ctx context.Context, runIDs entities.RunIdentifiers, stage entities.RunStage, kind entities.ArtefactKind, generate func(context.Context) (interface{}, error)) StageResult {
	ctx, span := observability.StartSpan(ctx, "pipeline.stage."+string(stage))
	defer span.End()

	s.publish(ctx, runIDs, stage, entities.RunStatusStarted, "")
	start := time.Now()

	document, err := generate(ctx)
	if err == nil {
		var path string
		path, _, err = s.repo.Save(ctx, kind, document, repositories.SaveOptions{
			EncounterID:   runIDs.EncounterID,
			CorrelationID: runIDs.CorrelationID,
		})
		if err == nil {
			observability.RecordArtefactWrite(ctx, s.metrics, string(kind))
			observability.RecordStageMetric(ctx, s.metrics, string(stage), string(entities.RunStatusSucceeded), time.Since(start))
			s.publish(ctx, runIDs, stage, entities.RunStatusSucceeded, path)
			log.Info().Str("stage", string(stage)).Str("path", path).Msg("stage completed")
			return StageResult{Stage: stage, Status: entities.RunStatusSucceeded, Path: path}
		}
	}

	observability.RecordError(span, err)
	observability.RecordStageMetric(ctx, s.metrics, string(stage), string(entities.RunStatusFailed), time.Since(start))
	s.publish(ctx, runIDs, stage, entities.RunStatusFailed, err.Error())
	log.Error().Err(err).Str("stage", string(stage)).Msg("stage failed")
	return StageResult{Stage: stage, Status: entities.RunStatusFailed, Err: err}
}

// skipRemaining marks requested stages that never ran as skipped.
func (s *PipelineService) skipRemaining(ctx context.Context, summary *RunSummary, opts PipelineOptions, runIDs entities.RunIdentifiers) {
	ran := make(map[entities.RunStage]bool, len(summary.Stages))
	for _, result := range summary.Stages {
		ran[result.Stage] = true
	}

	remaining := []struct {
		stage     entities.RunStage
		requested bool
	}{
		{entities.RunStageSOAPNote, true},
		{entities.RunStageDecisionSupport, opts.DecisionSupport},
		{entities.RunStagePatientArtefacts, opts.PatientArtefacts},
	}
	for _, r := range remaining {
		if !r.requested || ran[r.stage] {
			continue
		}
		summary.Stages = append(summary.Stages, StageResult{Stage: r.stage, Status: entities.RunStatusSkipped})
		s.publish(ctx, runIDs, r.stage, entities.RunStatusSkipped, "")
	}
}

// publish sends a run event on the shared and per-run channels. Publishing
// is best effort: a bus failure never affects the run.
func (s *PipelineService) publish(ctx context.Context, runIDs entities.RunIdentifiers, stage entities.RunStage, status entities.RunStatus, detail string) {
	if s.bus == nil {
		return
	}

	event := entities.NewRunEvent(runIDs, stage, status, detail)
	channels := []string{providers.EventChannelRuns}
	if runIDs.CorrelationID != "" {
		channels = append(channels, providers.GetRunChannel(runIDs.CorrelationID))
	}
	for _, channel := range channels {
		if err := s.bus.Publish(ctx, channel, event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to publish run event")
		}
	}
}
