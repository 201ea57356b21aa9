// Package orchestrator drives the Phase Orchestrator: it walks the
// fixed academic-level order, freezes each solved level's output as an
// obstacle for the next, and reports progress at the same milestones
// the original implementation's generate_timetable/
// generate_level_timetable pair reports over its WebSocket channel.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/campusforge/timetable-engine/internal/catalogue"
	"github.com/campusforge/timetable-engine/internal/model"
	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/internal/solver"
	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/metrics"
	"go.uber.org/zap"
)

// LevelOrder is the fixed academic-level solving order: final-year
// students first, freshest last, so senior timetables are never
// reshuffled to accommodate junior constraints.
var LevelOrder = []int{5, 4, 3, 2}

// ProgressEvent mirrors the dict shape the original's send_progress
// callback emits: {level, status, percentage, message}.
type ProgressEvent struct {
	Level      int     `json:"level"`
	Status     string  `json:"status"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

// ProgressSink receives progress events. The SSE-over-HTTP adapter in
// internal/handler satisfies this through ProgressSinkFunc.
type ProgressSink interface {
	Send(evt ProgressEvent)
}

// ProgressSinkFunc adapts a plain function to ProgressSink.
type ProgressSinkFunc func(ProgressEvent)

// Send implements ProgressSink.
func (f ProgressSinkFunc) Send(evt ProgressEvent) { f(evt) }

// noopSink discards progress events when the caller supplies none.
type noopSink struct{}

// Send implements ProgressSink.
func (noopSink) Send(ProgressEvent) {}

// monotoneSink enforces the contract that percentages never decrease
// across a run, whatever milestone an event carries — a failure event
// reports the percentage the run had actually reached, not the level's
// starting percentage.
type monotoneSink struct {
	inner ProgressSink
	last  float64
}

// Send implements ProgressSink.
func (s *monotoneSink) Send(evt ProgressEvent) {
	if evt.Percentage < s.last {
		evt.Percentage = s.last
	}
	s.last = evt.Percentage
	s.inner.Send(evt)
}

// Options configures one orchestration run.
type Options struct {
	LevelBudget time.Duration
	Levels      []int // solving order; LevelOrder when empty
	Progress    ProgressSink
	Logger      *zap.Logger
	Metrics     *metrics.Collector
}

// Result is everything one full generation run produced.
type Result struct {
	Slots           []models.PlacedSlot
	LevelsProcessed []int
}

// Run solves every level in LevelOrder in turn, freezing each level's
// placed slots as obstacles before moving to the next, and returns the
// combined slot set once all levels succeed. Cancellation is checked
// at the start of each level — the same granularity the original
// offers, since a WebSocket disconnect there only takes effect between
// `generate_level_timetable` calls.
func Run(ctx context.Context, store catalogue.Store, opts Options) (Result, error) {
	var sink ProgressSink = &monotoneSink{inner: opts.Progress}
	if opts.Progress == nil {
		sink = noopSink{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	budget := opts.LevelBudget
	if budget <= 0 {
		budget = solver.DefaultBudget
	}

	levels := opts.Levels
	if len(levels) == 0 {
		levels = LevelOrder
	}

	totalLevels := len(levels)
	var all []models.PlacedSlot
	var processed []int

	for idx, level := range levels {
		select {
		case <-ctx.Done():
			return Result{}, apierrors.ErrCancelled
		default:
		}

		// Level solves span 0-90; finalizing and the global completed
		// event take the last 10.
		pctStart := float64(idx) / float64(totalLevels) * 90
		pctEnd := float64(idx+1) / float64(totalLevels) * 90

		sink.Send(ProgressEvent{
			Level: level, Status: "starting", Percentage: pctStart,
			Message: fmt.Sprintf("Starting timetable generation for Level %d...", level),
		})

		slots, err := solveLevel(ctx, store, level, all, pctStart, pctEnd, budget, sink, logger, opts.Metrics)
		if err != nil {
			sink.Send(ProgressEvent{
				Level: level, Status: "failed", Percentage: pctStart,
				Message: fmt.Sprintf("Failed to generate timetable for Level %d", level),
			})
			sink.Send(ProgressEvent{
				Level: 0, Status: "error", Percentage: pctStart,
				Message: fmt.Sprintf("Generation aborted: %v", err),
			})
			logger.Warn("level_failed", zap.Int("level", level), zap.Error(err))
			return Result{}, err
		}

		all = append(all, slots...)
		processed = append(processed, level)

		sink.Send(ProgressEvent{
			Level: level, Status: "completed", Percentage: pctEnd,
			Message: fmt.Sprintf("Level %d timetable completed successfully", level),
		})
	}

	sink.Send(ProgressEvent{Level: 0, Status: "finalizing", Percentage: 95,
		Message: "Combining all levels and saving timetable..."})

	sink.Send(ProgressEvent{Level: 0, Status: "completed", Percentage: 100,
		Message: "Timetable generation completed successfully."})

	return Result{Slots: all, LevelsProcessed: processed}, nil
}

func solveLevel(ctx context.Context, store catalogue.Store, level int, frozen []models.PlacedSlot,
	pctStart, pctEnd float64, budget time.Duration, sink ProgressSink, logger *zap.Logger, metricsCollector *metrics.Collector) ([]models.PlacedSlot, error) {

	step := (pctEnd - pctStart) / 6

	sink.Send(ProgressEvent{Level: level, Status: "loading", Percentage: pctStart + step,
		Message: fmt.Sprintf("Loading catalogue for Level %d...", level)})

	snap, err := catalogue.Build(ctx, store, level)
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.ErrCatalogueInconsistent.Code, apierrors.ErrCatalogueInconsistent.Status, apierrors.ErrCatalogueInconsistent.Message)
	}
	if snap.Empty() {
		return nil, nil
	}

	sink.Send(ProgressEvent{Level: level, Status: "building", Percentage: pctStart + 2*step,
		Message: fmt.Sprintf("Preparing constraints for %d courses...", len(snap.Courses))})

	problem, err := model.Build(snap, frozen)
	if err != nil {
		return nil, err
	}

	if len(problem.DroppedCourses) > 0 {
		for _, c := range problem.DroppedCourses {
			logger.Warn("course_dropped_catalogue_inconsistent",
				zap.Int("level", level),
				zap.String("course_id", c.ID),
				zap.String("course_code", c.Code),
			)
		}
		metricsCollector.RecordDroppedCourses(level, len(problem.DroppedCourses))
	}

	sink.Send(ProgressEvent{Level: level, Status: "constraints", Percentage: pctStart + 3*step,
		Message: fmt.Sprintf("Built %d candidate variables for Level %d...", countVars(problem), level)})

	sink.Send(ProgressEvent{Level: level, Status: "solving", Percentage: pctStart + 4*step,
		Message: fmt.Sprintf("Solving constraints for Level %d...", level)})

	start := time.Now()
	result := solver.Solve(ctx, snap, problem, budget)
	duration := time.Since(start)
	variableCount := countVars(problem)
	logger.Info("level_solved",
		zap.Int("level", level),
		zap.String("status", string(result.Status)),
		zap.Duration("duration", duration),
		zap.Int("variables", variableCount),
		zap.Int("dropped_sessions", len(result.Dropped)),
	)
	metricsCollector.ObserveLevelSolve(level, string(result.Status), variableCount, duration)
	metricsCollector.RecordDroppedSessions(level, len(result.Dropped))

	switch result.Status {
	case solver.StatusInfeasible:
		return nil, apierrors.ErrInfeasible
	case solver.StatusTimeoutNoSolution:
		return nil, apierrors.ErrTimeout
	}

	sink.Send(ProgressEvent{Level: level, Status: "extracting", Percentage: pctStart + 5*step,
		Message: "solution found! processing..."})

	return extract(level, result), nil
}

func countVars(p *model.Problem) int {
	n := 0
	for _, sv := range p.Sessions {
		n += len(sv.Vars)
	}
	return n
}

// extract expands each resolved session assignment into one PlacedSlot
// per covered hour, matching the original's per-hour row expansion in
// its extraction loop (`for i in range(duration): ...`).
func extract(level int, result solver.Result) []models.PlacedSlot {
	var slots []models.PlacedSlot
	for _, a := range result.Assignments {
		for i := 0; i < a.Session.DurationHrs; i++ {
			t := a.Key.Start + i
			slots = append(slots, models.PlacedSlot{
				CourseID:    a.Key.CourseID,
				GroupID:     a.Key.GroupID,
				LecturerID:  a.Key.LecturerID,
				RoomID:      a.Key.RoomID,
				DayOfWeek:   a.Key.Day,
				StartSlot:   t,
				EndSlot:     t + 1,
				SessionType: string(a.Session.Type),
				Level:       level,
			})
		}
	}
	return slots
}
