package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Orchestrator wraps a pipeline job with run bookkeeping and logging.
type Orchestrator struct {
	cfg   PipelineConfig
	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg PipelineConfig) *Orchestrator {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &Orchestrator{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Config returns the pipeline configuration in use.
func (o *Orchestrator) Config() PipelineConfig {
	return o.cfg
}

// Run executes job for the given reference date. The run record is always
// returned, marked completed or failed.
func (o *Orchestrator) Run(ctx context.Context, referenceDate time.Time, job func(ctx context.Context, run *PipelineRun) error) (*PipelineRun, error) {
	run := &PipelineRun{
		ID:            o.newID(),
		PipelineName:  o.cfg.Name,
		ReferenceDate: referenceDate,
		Status:        StatusPending,
		StartedAt:     o.now(),
	}

	logger := log.With().
		Str("pipeline", o.cfg.Name).
		Str("run_id", run.ID).
		Str("reference_date", referenceDate.Format("2006-01-02")).
		Logger()

	if err := ctx.Err(); err != nil {
		o.finish(run, err)
		return run, fmt.Errorf("%s run not started: %w", o.cfg.Name, err)
	}

	run.Status = StatusProcessing
	logger.Info().Int("workers", o.cfg.WorkerCount).Msg("pipeline run started")

	if err := job(ctx, run); err != nil {
		o.finish(run, err)
		logger.Error().Err(err).Dur("duration", run.Duration()).Msg("pipeline run failed")
		return run, fmt.Errorf("%s run failed: %w", o.cfg.Name, err)
	}

	o.finish(run, nil)
	logger.Info().
		Int("products", run.TotalProducts).
		Int("batches", run.TotalBatches).
		Int("assessed", run.AssessedBatches).
		Int("unassessable", run.UnassessableBatches).
		Dur("duration", run.Duration()).
		Msg("pipeline run completed")

	return run, nil
}

func (o *Orchestrator) finish(run *PipelineRun, err error) {
	now := o.now()
	run.CompletedAt = &now
	if err != nil {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
		return
	}
	run.Status = StatusCompleted
}
