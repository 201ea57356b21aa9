package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/pkg/config"
	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/metrics"
	"github.com/campusforge/timetable-engine/pkg/runlock"
)

type fakeStore struct{}

func (fakeStore) CoursesByLevel(ctx context.Context, level int) ([]models.Course, error) {
	return nil, nil
}
func (fakeStore) GroupsByLevel(ctx context.Context, level int) ([]models.StudentGroup, error) {
	return nil, nil
}
func (fakeStore) AllRooms(ctx context.Context) ([]models.Room, error) { return nil, nil }
func (fakeStore) LecturerAssignmentsByCourse(ctx context.Context, courseID string) ([]models.LecturerAssignment, error) {
	return nil, nil
}
func (fakeStore) GroupAssignmentsByCourse(ctx context.Context, courseID string) ([]models.GroupAssignment, error) {
	return nil, nil
}
func (fakeStore) Lecturer(ctx context.Context, lecturerID string) (models.Lecturer, error) {
	return models.Lecturer{}, nil
}
func (fakeStore) LecturerUnavailability(ctx context.Context, lecturerID string) ([]models.LecturerUnavailability, error) {
	return nil, nil
}

type fakeSink struct {
	mu       sync.Mutex
	replaced []models.PlacedSlot
}

func (s *fakeSink) ReplaceSlotsAndStamp(ctx context.Context, timetableID string, slots []models.PlacedSlot, metadata models.GenerationMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced = slots
	return nil
}

type fakeHandle struct{ released bool }

func (h *fakeHandle) Release(ctx context.Context) error {
	h.released = true
	return nil
}

type fakeLocker struct {
	mu     sync.Mutex
	busy   map[string]bool
	denyAt string
}

func newFakeLocker() *fakeLocker { return &fakeLocker{busy: map[string]bool{}} }

func (l *fakeLocker) Acquire(ctx context.Context, timetableID string) (runlock.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy[timetableID] || timetableID == l.denyAt {
		return nil, apierrors.ErrAlreadyRunning
	}
	l.busy[timetableID] = true
	return &fakeHandle{}, nil
}

func TestGenerateRunsEmptyOrchestrationAndMaterializesNothing(t *testing.T) {
	sink := &fakeSink{}
	gen := NewGenerator(fakeStore{}, sink, newFakeLocker(), metrics.New(), nil, config.SchedulerConfig{LevelBudget: time.Second})

	err := gen.Generate(context.Background(), "tt-1", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, sink.replaced)
}

func TestGenerateRejectsSecondConcurrentRunForSameTimetable(t *testing.T) {
	locker := newFakeLocker()
	locker.busy["tt-1"] = true // simulate a run already holding the lock
	gen := NewGenerator(fakeStore{}, &fakeSink{}, locker, metrics.New(), nil, config.SchedulerConfig{LevelBudget: time.Second})

	err := gen.Generate(context.Background(), "tt-1", 0, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrAlreadyRunning)
}

func TestCancelReturnsFalseWhenNothingInFlight(t *testing.T) {
	gen := NewGenerator(fakeStore{}, &fakeSink{}, newFakeLocker(), metrics.New(), nil, config.SchedulerConfig{LevelBudget: time.Second})
	assert.False(t, gen.Cancel("no-such-run"))
}

// blockingStore blocks its first CoursesByLevel call on the run's
// context, giving a test a deterministic point at which a run is
// "in flight" without racing real solve work.
type blockingStore struct {
	fakeStore
}

func (s *blockingStore) CoursesByLevel(ctx context.Context, level int) ([]models.Course, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCancelStopsAnInFlightRun(t *testing.T) {
	store := &blockingStore{}
	gen := NewGenerator(store, &fakeSink{}, newFakeLocker(), metrics.New(), nil, config.SchedulerConfig{LevelBudget: time.Second})

	done := make(chan error, 1)
	go func() {
		done <- gen.Generate(context.Background(), "tt-2", 0, nil)
	}()

	require.Eventually(t, func() bool {
		return gen.Cancel("tt-2")
	}, 2*time.Second, 10*time.Millisecond, "run never registered as in-flight")

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled generation never returned")
	}
}
