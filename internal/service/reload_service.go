package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
	"github.com/noah-isme/helper-roster/pkg/jobs"
)

type rosterLoader interface {
	Load(ctx context.Context) (*models.Roster, error)
}

// ReloadService re-reads the sources on a background worker.
type ReloadService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewReloadService builds the reload queue around loader.
func NewReloadService(loader rosterLoader, cfg jobs.QueueConfig) *ReloadService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	logger := cfg.Logger
	handler := func(ctx context.Context, job jobs.Job) error {
		logger.Info("reloading roster", zap.String("job_id", job.ID), zap.String("reason", job.Reason), zap.Int("attempt", job.Attempt))
		_, err := loader.Load(ctx)
		return err
	}
	return &ReloadService{queue: jobs.NewQueue("roster-reload", handler, cfg), logger: logger}
}

// Start launches the workers.
func (s *ReloadService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for the workers to exit.
func (s *ReloadService) Stop() {
	s.queue.Stop()
}

// Trigger enqueues a reload.
func (s *ReloadService) Trigger(reason string) (jobs.Job, error) {
	job, err := s.queue.Enqueue(reason)
	if err != nil {
		return jobs.Job{}, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "reload could not be queued")
	}
	return job, nil
}

// Status returns the state of a reload job.
func (s *ReloadService) Status(id string) (jobs.Job, error) {
	job, ok := s.queue.Status(id)
	if !ok {
		return jobs.Job{}, appErrors.Clone(appErrors.ErrNotFound, "reload job not found")
	}
	return job, nil
}
