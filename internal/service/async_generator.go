package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/pkg/jobs"
)

// AsyncGenerator dispatches generation runs onto a worker pool for
// callers that don't want to hold an SSE connection open for the
// duration of a solve.
type AsyncGenerator struct {
	generator *Generator
	pool      *jobs.Pool
	logger    *zap.Logger
}

// NewAsyncGenerator builds an AsyncGenerator and starts its pool.
func NewAsyncGenerator(ctx context.Context, generator *Generator, logger *zap.Logger, workers int) *AsyncGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	ag := &AsyncGenerator{generator: generator, logger: logger}
	ag.pool = jobs.NewPool(ag.handle, workers, logger)
	ag.pool.Start(ctx)
	return ag
}

// Enqueue submits a generation run for timetableID to the worker pool,
// returning immediately.
func (ag *AsyncGenerator) Enqueue(timetableID string, budget time.Duration) error {
	return ag.pool.Submit(jobs.GenerationJob{
		TimetableID: timetableID,
		LevelBudget: budget,
	})
}

// Stop cancels the underlying worker pool and waits for in-flight runs
// to return; queued jobs not yet picked up by a worker are not
// guaranteed to run.
func (ag *AsyncGenerator) Stop() {
	ag.pool.Stop()
}

func (ag *AsyncGenerator) handle(ctx context.Context, job jobs.GenerationJob) error {
	if err := ag.generator.Generate(ctx, job.TimetableID, job.LevelBudget, nil); err != nil {
		return fmt.Errorf("async generate %s: %w", job.TimetableID, err)
	}
	ag.logger.Info("async generation completed", zap.String("timetable_id", job.TimetableID))
	return nil
}
