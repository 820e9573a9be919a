package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberworks/stoker/internal/util"
)

func noopTask(args ...any) (map[string]any, error) {
	return nil, nil
}

func TestNewJobDefaults(t *testing.T) {
	job := NewJob("sync-mail", JobKindSync, noopTask, "inbox")

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "sync-mail", job.Name)
	assert.Equal(t, JobKindSync, job.Kind)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, RecurrenceOnce, job.Recurrence.Kind)
	assert.Equal(t, DefaultMaxRetries, job.MaxRetries)
	assert.True(t, job.Enabled)
	assert.Nil(t, job.ScheduledFor)
	assert.Equal(t, []any{"inbox"}, job.Args)
}

func TestJobIsReady(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(*Job)
		want   bool
	}{
		{"pending with no schedule", func(j *Job) {}, true},
		{"disabled", func(j *Job) { j.Enabled = false }, false},
		{"running", func(j *Job) { j.Status = JobStatusRunning }, false},
		{"completed", func(j *Job) { j.Status = JobStatusCompleted }, false},
		{"cancelled", func(j *Job) { j.Status = JobStatusCancelled }, false},
		{"scheduled in the future", func(j *Job) { j.ScheduledFor = util.Ptr(now.Add(time.Hour)) }, false},
		{"scheduled in the past", func(j *Job) { j.ScheduledFor = util.Ptr(now.Add(-time.Hour)) }, true},
		{"scheduled exactly now", func(j *Job) { j.ScheduledFor = util.Ptr(now) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob("probe", JobKindCustom, noopTask)
			tt.mutate(job)
			assert.Equal(t, tt.want, job.IsReady(now))
		})
	}
}

func TestJobCloneIsIndependent(t *testing.T) {
	job := NewJob("clone-me", JobKindExport, noopTask, 1, 2)
	job.ScheduledFor = util.Ptr(time.Now().Add(time.Minute))

	clone := job.Clone()
	require.Equal(t, job.ID, clone.ID)

	clone.Status = JobStatusRunning
	clone.Args[0] = 99
	*clone.ScheduledFor = time.Time{}

	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.Args[0])
	assert.False(t, job.ScheduledFor.IsZero())
}

func TestRecurrenceNext(t *testing.T) {
	tests := []struct {
		name        string
		spec        RecurrenceSpec
		want        time.Duration
		reschedules bool
	}{
		{"once", Once(), 0, false},
		{"hourly", Recur(RecurrenceHourly, 1), time.Hour, true},
		{"every 6 hours", Recur(RecurrenceHourly, 6), 6 * time.Hour, true},
		{"daily", Recur(RecurrenceDaily, 1), 24 * time.Hour, true},
		{"weekly", Recur(RecurrenceWeekly, 1), 7 * 24 * time.Hour, true},
		{"monthly approximated", Recur(RecurrenceMonthly, 1), 30 * 24 * time.Hour, true},
		{"custom with period", RecurrenceSpec{Kind: RecurrenceCustom, Interval: 1, Every: 90 * time.Second}, 90 * time.Second, true},
		{"custom without period", RecurrenceSpec{Kind: RecurrenceCustom, Interval: 1}, 0, false},
		{"zero interval clamps to one", RecurrenceSpec{Kind: RecurrenceDaily}, 24 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.spec.Next()
			assert.Equal(t, tt.reschedules, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{"pending", "running", "completed", "failed", "cancelled"} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("paused"))
	assert.False(t, IsValidStatus(""))
}
