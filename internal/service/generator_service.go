// Package service wires the Catalogue Store, the Phase Orchestrator and
// the Slot Materialiser behind a single invocation contract, and
// enforces the single-writer-per-timetable invariant with both a
// process-local guard and a Redis-backed cross-replica lock.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/catalogue"
	"github.com/campusforge/timetable-engine/internal/materialize"
	"github.com/campusforge/timetable-engine/internal/orchestrator"
	"github.com/campusforge/timetable-engine/pkg/config"
	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/metrics"
	"github.com/campusforge/timetable-engine/pkg/runlock"
)

// Generator is the Generator invocation contract spec.md §6 describes:
// one entry point that runs the full level-by-level orchestration and
// materialises the result, with progress and cancellation plumbed
// through.
type Generator struct {
	store     catalogue.Store
	sink      materialize.SlotSink
	locker    runlock.Locker
	metrics   *metrics.Collector
	logger    *zap.Logger
	scheduler config.SchedulerConfig

	mu       sync.Mutex
	inFlight map[string]context.CancelFunc
}

// NewGenerator constructs a Generator.
func NewGenerator(store catalogue.Store, sink materialize.SlotSink, locker runlock.Locker,
	collector *metrics.Collector, logger *zap.Logger, scheduler config.SchedulerConfig) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		store:     store,
		sink:      sink,
		locker:    locker,
		metrics:   collector,
		logger:    logger,
		scheduler: scheduler,
		inFlight:  map[string]context.CancelFunc{},
	}
}

// Generate runs one full generation for timetableID: acquires the
// distributed lock, registers the in-process cancellation handle,
// solves every level via the orchestrator, and materialises the
// combined result. budgetOverride, if > 0, replaces the configured
// per-level solve budget for this run only.
func (g *Generator) Generate(ctx context.Context, timetableID string, budgetOverride time.Duration, progress orchestrator.ProgressSink) error {
	lock, err := g.locker.Acquire(ctx, timetableID)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release(context.Background()) }()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.mu.Lock()
	if _, exists := g.inFlight[timetableID]; exists {
		g.mu.Unlock()
		return apierrors.ErrAlreadyRunning
	}
	g.inFlight[timetableID] = cancel
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inFlight, timetableID)
		g.mu.Unlock()
	}()

	g.metrics.RunStarted()
	defer g.metrics.RunFinished()

	budget := budgetOverride
	if budget <= 0 {
		budget = g.scheduler.LevelBudget
	}

	result, err := orchestrator.Run(runCtx, g.store, orchestrator.Options{
		LevelBudget: budget,
		Levels:      g.scheduler.LevelOrder,
		Progress:    progress,
		Logger:      g.logger,
		Metrics:     g.metrics,
	})
	if err != nil {
		return err
	}

	return materialize.Materialize(ctx, g.sink, timetableID, result.Slots, result.LevelsProcessed)
}

// Cancel requests cancellation of an in-flight run for timetableID.
// Honoured at the orchestrator's next milestone check, not
// immediately. Returns false if no run is in flight for that id.
func (g *Generator) Cancel(timetableID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	cancel, ok := g.inFlight[timetableID]
	if !ok {
		return false
	}
	cancel()
	return true
}
