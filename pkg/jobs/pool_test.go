package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	var mu sync.Mutex
	var ran []string
	done := make(chan struct{}, 2)

	pool := NewPool(func(ctx context.Context, job GenerationJob) error {
		mu.Lock()
		ran = append(ran, job.TimetableID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, 2, nil)
	pool.Start(context.Background())
	defer pool.Stop()

	require.NoError(t, pool.Submit(GenerationJob{TimetableID: "tt-1"}))
	require.NoError(t, pool.Submit(GenerationJob{TimetableID: "tt-2"}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job never ran")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"tt-1", "tt-2"}, ran)
}

func TestPoolSubmitBeforeStartFails(t *testing.T) {
	pool := NewPool(func(ctx context.Context, job GenerationJob) error { return nil }, 1, nil)
	assert.Error(t, pool.Submit(GenerationJob{TimetableID: "tt-1"}))
}

func TestPoolSubmitAfterStopFails(t *testing.T) {
	pool := NewPool(func(ctx context.Context, job GenerationJob) error { return nil }, 1, nil)
	pool.Start(context.Background())
	pool.Stop()
	assert.Error(t, pool.Submit(GenerationJob{TimetableID: "tt-1"}))
}

func TestPoolStampsEnqueueTime(t *testing.T) {
	got := make(chan GenerationJob, 1)
	pool := NewPool(func(ctx context.Context, job GenerationJob) error {
		got <- job
		return nil
	}, 1, nil)
	pool.Start(context.Background())
	defer pool.Stop()

	require.NoError(t, pool.Submit(GenerationJob{TimetableID: "tt-1"}))
	select {
	case job := <-got:
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
}
