package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
	"github.com/noah-isme/helper-roster/pkg/jobs"
)

type loaderStub struct {
	calls int32
	err   error
}

func (l *loaderStub) Load(ctx context.Context) (*models.Roster, error) {
	atomic.AddInt32(&l.calls, 1)
	if l.err != nil {
		return nil, l.err
	}
	return &models.Roster{}, nil
}

func TestReloadServiceRunsLoader(t *testing.T) {
	loader := &loaderStub{}
	svc := NewReloadService(loader, jobs.QueueConfig{})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Trigger("api")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := svc.Status(job.ID)
		return err == nil && status.State == jobs.StateSucceeded
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loader.calls))
}

func TestReloadServiceReportsFailure(t *testing.T) {
	loader := &loaderStub{err: errors.New("missing file")}
	svc := NewReloadService(loader, jobs.QueueConfig{MaxRetries: 0})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Trigger("api")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := svc.Status(job.ID)
		return err == nil && status.State == jobs.StateFailed
	}, 2*time.Second, 5*time.Millisecond)

	_, err = svc.Status("unknown")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReloadServiceTriggerBeforeStart(t *testing.T) {
	svc := NewReloadService(&loaderStub{}, jobs.QueueConfig{})
	_, err := svc.Trigger("api")
	assert.ErrorIs(t, err, appErrors.ErrSourceUnavailable)
}
