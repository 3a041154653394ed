package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the lifecycle position of a job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Job represents a queued background task.
type Job struct {
	ID       string    `json:"id"`
	Reason   string    `json:"reason"`
	Attempt  int       `json:"attempt"`
	State    State     `json:"state"`
	Error    string    `json:"error,omitempty"`
	Enqueued time.Time `json:"enqueued_at"`
	Finished time.Time `json:"finished_at,omitempty"`
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// StateTTL is how long finished jobs stay visible to Status.
	StateTTL time.Duration
	Logger   *zap.Logger
}

// Queue is an in-memory job dispatcher that remembers job states.
type Queue struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	stateTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	states  map[string]Job
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		stateTTL:   cfg.StateTTL,
		logger:     cfg.Logger,
		now:        func() time.Time { return time.Now().UTC() },
		jobs:       make(chan Job, cfg.BufferSize),
		states:     make(map[string]Job),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue schedules a new job and returns it with its assigned id.
func (q *Queue) Enqueue(reason string) (Job, error) {
	job := Job{ID: uuid.NewString(), Reason: reason, State: StatePending, Enqueued: q.now()}
	if err := q.push(job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Status returns the last known state of a job.
func (q *Queue) Status(id string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.states[id]
	return job, ok
}

func (q *Queue) push(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}

	q.record(job)
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	default:
		job.State = StateFailed
		job.Error = "queue full"
		job.Finished = q.now()
		q.record(job)
		return fmt.Errorf("queue %s is full", q.name)
	}
}

// record stores the job state and forgets jobs that finished more than
// stateTTL ago.
func (q *Queue) record(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.states[job.ID] = job

	cutoff := q.now().Add(-q.stateTTL)
	for id, known := range q.states {
		if !known.Finished.IsZero() && known.Finished.Before(cutoff) {
			delete(q.states, id)
		}
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			job.State = StateRunning
			q.record(job)
			if err := q.handler(q.ctx, job); err != nil {
				q.handleFailure(job, err)
				continue
			}
			job.State = StateSucceeded
			job.Error = ""
			job.Finished = q.now()
			q.record(job)
		}
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	job.Attempt++
	job.Error = err.Error()
	if job.Attempt > q.maxRetries {
		job.State = StateFailed
		job.Finished = q.now()
		q.record(job)
		q.logger.Error("job exceeded retries", zap.String("queue", q.name), zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	job.State = StatePending
	q.record(job)
	q.logger.Warn("job failed, retrying", zap.String("queue", q.name), zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))

	go func(j Job) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			return
		case <-timer.C:
			if err := q.push(j); err != nil {
				q.logger.Error("failed to requeue job", zap.String("queue", q.name), zap.String("job_id", j.ID), zap.Error(err))
			}
		}
	}(job)
}
