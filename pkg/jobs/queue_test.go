package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForState(t *testing.T, q *Queue, id string, want State) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		var ok bool
		job, ok = q.Status(id)
		return ok && job.State == want
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestQueueRunsJob(t *testing.T) {
	var calls int32
	q := NewQueue("reload", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	defer q.Stop()

	job, err := q.Enqueue("manual")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)

	done := waitForState(t, q, job.ID, StateSucceeded)
	assert.Equal(t, "manual", done.Reason)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueRetriesThenFails(t *testing.T) {
	var calls int32
	q := NewQueue("reload", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("source missing")
	}, QueueConfig{MaxRetries: 1, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	job, err := q.Enqueue("manual")
	require.NoError(t, err)

	failed := waitForState(t, q, job.ID, StateFailed)
	assert.Equal(t, "source missing", failed.Error)
	assert.Equal(t, 2, failed.Attempt)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("reload", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	_, err := q.Enqueue("manual")
	assert.Error(t, err)

	_, ok := q.Status("missing")
	assert.False(t, ok)
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestQueueForgetsExpiredJobs(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)}
	q := NewQueue("reload", func(ctx context.Context, job Job) error {
		return nil
	}, QueueConfig{StateTTL: time.Minute})
	q.now = clock.Now
	q.Start(context.Background())
	defer q.Stop()

	first, err := q.Enqueue("first")
	require.NoError(t, err)
	waitForState(t, q, first.ID, StateSucceeded)

	clock.Advance(30 * time.Second)
	second, err := q.Enqueue("second")
	require.NoError(t, err)
	waitForState(t, q, second.ID, StateSucceeded)
	_, ok := q.Status(first.ID)
	assert.True(t, ok, "finished job within the ttl stays visible")

	clock.Advance(2 * time.Minute)
	third, err := q.Enqueue("third")
	require.NoError(t, err)
	waitForState(t, q, third.ID, StateSucceeded)

	_, ok = q.Status(first.ID)
	assert.False(t, ok)
	_, ok = q.Status(second.ID)
	assert.False(t, ok)
}
