package app

import (
	"context"
	"fmt"

	"github.com/artpar/catalogctl/domain/ingestion"
	"github.com/artpar/catalogctl/ports"
	"github.com/rs/zerolog"
)

// Pipeline run errors.
var (
	ErrPipelineTimeout = ingestion.ErrTimeout
	ErrPipelineFailed  = ingestion.ErrFailed
)

// PipelineRunner triggers ingestion pipelines and optionally waits for them.
type PipelineRunner struct {
	pipelines ports.Pipelines
	clock     ports.Clock
	logger    zerolog.Logger
}

// NewPipelineRunner creates a runner. A nil clock uses the system clock.
func NewPipelineRunner(pipelines ports.Pipelines, clock ports.Clock, logger zerolog.Logger) *PipelineRunner {
	if clock == nil {
		clock = systemClock{}
	}
	return &PipelineRunner{
		pipelines: pipelines,
		clock:     clock,
		logger:    logger.With().Str("component", "pipeline_runner").Logger(),
	}
}

// Run triggers pipelineID. With WaitForCompletion set it polls the status
// until the run is terminal or the timeout elapses.
func (r *PipelineRunner) Run(ctx context.Context, pipelineID string, cfg ingestion.RunConfig) (ingestion.Run, error) {
	cfg = cfg.WithDefaults()
	run := ingestion.Run{PipelineID: pipelineID}
	log := r.logger.With().Str("pipeline", pipelineID).Logger()

	if err := r.pipelines.TriggerPipeline(ctx, pipelineID); err != nil {
		return run, fmt.Errorf("trigger pipeline %s: %w", pipelineID, err)
	}
	log.Info().Msg("pipeline triggered")
	if !cfg.WaitForCompletion {
		return run, nil
	}

	run.Waited = true
	start := r.clock.Now()
	deadline := start.Add(cfg.Timeout)
	for {
		status, err := r.pipelines.PipelineStatus(ctx, pipelineID)
		if err != nil {
			return run, fmt.Errorf("pipeline %s status: %w", pipelineID, err)
		}
		run.Polls++
		run.State = status.State
		run.Elapsed = r.clock.Now().Sub(start)

		if status.State.Terminal() {
			log.Info().Str("state", string(status.State)).Int("polls", run.Polls).Dur("elapsed", run.Elapsed).Msg("pipeline finished")
			if status.State == ingestion.StateFailed {
				return run, fmt.Errorf("pipeline %s: %w", pipelineID, ErrPipelineFailed)
			}
			return run, nil
		}

		remaining := deadline.Sub(r.clock.Now())
		if remaining <= 0 {
			return run, fmt.Errorf("pipeline %s after %s: %w", pipelineID, cfg.Timeout, ErrPipelineTimeout)
		}
		log.Debug().Str("state", string(status.State)).Msg("pipeline running")

		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-r.clock.After(min(cfg.PollInterval, remaining)):
		}
	}
}
