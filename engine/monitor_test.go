package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberworks/stoker/errors"
	"github.com/emberworks/stoker/internal/util"
)

func TestMonitorEmpty(t *testing.T) {
	s := newTestScheduler(t)
	m := NewMonitor(s)

	metrics := m.CollectMetrics()
	assert.Zero(t, metrics.TotalJobs)
	assert.Zero(t, metrics.TotalExecutions)
	assert.Zero(t, metrics.SuccessRate)
	assert.Zero(t, metrics.AvgDuration)
}

func TestMonitorCountsByStatus(t *testing.T) {
	s := newTestScheduler(t)
	m := NewMonitor(s)

	ok := NewJob("ok", JobKindCustom, noopTask)
	s.AddJob(ok)

	pending := NewJob("pending", JobKindCustom, noopTask)
	pending.ScheduledFor = util.Ptr(time.Now().Add(time.Hour))
	s.AddJob(pending)

	doomed := NewJob("doomed", JobKindCustom, noopTask)
	doomed.Status = JobStatusCancelled
	s.AddJob(doomed)

	require.True(t, s.RunOnce(context.Background()))

	metrics := m.CollectMetrics()
	assert.Equal(t, 3, metrics.TotalJobs)
	assert.Equal(t, 1, metrics.CompletedJobs)
	assert.Equal(t, 1, metrics.PendingJobs)
	assert.Equal(t, 1, metrics.CancelledJobs)
	assert.Zero(t, metrics.RunningJobs)
}

func TestMonitorFailedJobMetrics(t *testing.T) {
	s := newTestScheduler(t)
	m := NewMonitor(s)

	job := NewJob("hopeless", JobKindSync, func(args ...any) (map[string]any, error) {
		return nil, errors.New("permanently broken")
	})
	job.MaxRetries = 2
	s.AddJob(job)

	require.True(t, s.RunOnce(context.Background()))

	metrics := m.CollectMetrics()
	assert.Equal(t, 1, metrics.FailedJobs)
	assert.Equal(t, 1, metrics.TotalExecutions)
	assert.Equal(t, 1, metrics.Failed)
	assert.Zero(t, metrics.Completed)
	assert.Zero(t, metrics.SuccessRate)

	results := m.JobResults(job.ID)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Retries, "all retries burned before the failure is final")
}

func TestMonitorSuccessRate(t *testing.T) {
	s := newTestScheduler(t)
	m := NewMonitor(s)

	s.AddJob(NewJob("good-1", JobKindCustom, noopTask))
	s.AddJob(NewJob("good-2", JobKindCustom, noopTask))
	s.AddJob(NewJob("good-3", JobKindCustom, noopTask))

	bad := NewJob("bad", JobKindCustom, func(args ...any) (map[string]any, error) {
		return nil, errors.New("nope")
	})
	bad.MaxRetries = 0
	s.AddJob(bad)

	for s.RunOnce(context.Background()) {
	}

	metrics := m.CollectMetrics()
	assert.Equal(t, 4, metrics.TotalExecutions)
	assert.Equal(t, 3, metrics.Completed)
	assert.Equal(t, 1, metrics.Failed)
	assert.InDelta(t, 75.0, metrics.SuccessRate, 0.001)
}
