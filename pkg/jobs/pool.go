// Package jobs runs queued generation work on a fixed worker pool, so
// a caller can hand off a long solve and return immediately. Failed
// runs are not retried: every generation failure is terminal for that
// run, and a re-run is an explicit caller decision.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// GenerationJob is one queued request to generate a timetable.
type GenerationJob struct {
	TimetableID string
	LevelBudget time.Duration
	Enqueued    time.Time
}

// Runner executes one generation job to completion.
type Runner func(context.Context, GenerationJob) error

// Pool dispatches GenerationJobs to a fixed number of workers.
type Pool struct {
	run     Runner
	workers int
	logger  *zap.Logger

	jobs    chan GenerationJob
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewPool builds a pool; Start must be called before Submit.
func NewPool(run Runner, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		run:     run,
		workers: workers,
		logger:  logger,
		jobs:    make(chan GenerationJob, workers*4),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.started = true
	p.logger.Info("generation pool started", zap.Int("workers", p.workers))
}

// Stop cancels the workers and waits for in-flight jobs to return.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Info("generation pool stopped")
}

// Submit enqueues a job, blocking if the buffer is full.
func (p *Pool) Submit(job GenerationJob) error {
	p.mu.Lock()
	ctx := p.ctx
	started := p.started
	p.mu.Unlock()

	if !started {
		return fmt.Errorf("generation pool not started")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("generation pool stopped: %w", err)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("generation pool stopped: %w", ctx.Err())
	case p.jobs <- job:
		return nil
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			if err := p.run(p.ctx, job); err != nil {
				p.logger.Error("generation job failed",
					zap.String("timetable_id", job.TimetableID),
					zap.Duration("queued_for", time.Since(job.Enqueued)),
					zap.Error(err),
				)
			}
		}
	}
}
