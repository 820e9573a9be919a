// Package engine implements the Stoker background job engine: a job registry
// with a bounded worker pool, synchronous per-job execution, bounded result
// history, retry policy, and interval-based recurrence.
package engine

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current lifecycle state of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsValidStatus returns true if the status string is a valid JobStatus
func IsValidStatus(s string) bool {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted,
		JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// JobKind classifies a job for reporting. It carries no scheduling meaning.
type JobKind string

const (
	JobKindSync        JobKind = "sync"
	JobKindExport      JobKind = "export"
	JobKindImport      JobKind = "import"
	JobKindCleanup     JobKind = "cleanup"
	JobKindBackup      JobKind = "backup"
	JobKindAnalytics   JobKind = "analytics"
	JobKindMaintenance JobKind = "maintenance"
	JobKindCustom      JobKind = "custom"
)

// RecurrenceKind identifies how a job's next run time is derived.
type RecurrenceKind string

const (
	RecurrenceOnce    RecurrenceKind = "once"
	RecurrenceHourly  RecurrenceKind = "hourly"
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
	RecurrenceCustom  RecurrenceKind = "custom"
)

// RecurrenceSpec describes how a completed or failed job is re-admitted to
// pending. Interval is a multiplier on the kind's base period (minimum 1).
// Every applies to RecurrenceCustom only; when zero, a custom job is not
// rescheduled.
type RecurrenceSpec struct {
	Kind     RecurrenceKind
	Interval int
	Every    time.Duration
}

// Once returns the non-recurring spec.
func Once() RecurrenceSpec {
	return RecurrenceSpec{Kind: RecurrenceOnce, Interval: 1}
}

// Recur returns a recurrence spec for the given kind and interval multiplier.
func Recur(kind RecurrenceKind, interval int) RecurrenceSpec {
	if interval < 1 {
		interval = 1
	}
	return RecurrenceSpec{Kind: kind, Interval: interval}
}

// Next returns the delay until the job's next eligible run, and whether the
// spec reschedules at all. Monthly is approximated as 30 days; it is not
// calendar-accurate.
func (r RecurrenceSpec) Next() (time.Duration, bool) {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.Kind {
	case RecurrenceHourly:
		return time.Duration(interval) * time.Hour, true
	case RecurrenceDaily:
		return time.Duration(interval) * 24 * time.Hour, true
	case RecurrenceWeekly:
		return time.Duration(interval) * 7 * 24 * time.Hour, true
	case RecurrenceMonthly:
		return time.Duration(interval) * 30 * 24 * time.Hour, true
	case RecurrenceCustom:
		if r.Every <= 0 {
			return 0, false
		}
		return time.Duration(interval) * r.Every, true
	default:
		// once, or an unknown kind: never rescheduled
		return 0, false
	}
}

// Task is the callable a job executes. It must be a pure function of its
// arguments, returning a result mapping or an error, and must not assume
// thread affinity.
type Task func(args ...any) (map[string]any, error)

// Default job knobs applied by NewJob.
const (
	DefaultMaxRetries = 3
	DefaultTimeout    = time.Hour
)

// Job represents a registered unit of schedulable work.
//
// The scheduler's registry exclusively owns job state; accessors hand out
// copies (see Clone) so callers can never mutate registry state without
// going through the registry API.
type Job struct {
	ID           string
	Name         string
	Kind         JobKind
	Task         Task
	Args         []any
	Status       JobStatus
	CreatedAt    time.Time
	ScheduledFor *time.Time // earliest eligible run time; nil = immediately eligible
	Recurrence   RecurrenceSpec
	MaxRetries   int
	Timeout      time.Duration // advisory; enforced by the executor when > 0
	Enabled      bool
	LastRun      *time.Time
	NextRun      *time.Time
}

// NewJob creates a pending, enabled job with no schedule (immediately
// eligible) and a fresh UUID.
func NewJob(name string, kind JobKind, task Task, args ...any) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Name:       name,
		Kind:       kind,
		Task:       task,
		Args:       args,
		Status:     JobStatusPending,
		CreatedAt:  time.Now(),
		Recurrence: Once(),
		MaxRetries: DefaultMaxRetries,
		Timeout:    DefaultTimeout,
		Enabled:    true,
	}
}

// IsReady reports whether the job is eligible to be claimed at now:
// enabled, pending, and past any scheduled_for time. A job freshly
// completed or failed is not ready until recurrence rescheduling moves it
// back to pending.
func (j *Job) IsReady(now time.Time) bool {
	if !j.Enabled {
		return false
	}
	if j.Status != JobStatusPending {
		return false
	}
	if j.ScheduledFor != nil && j.ScheduledFor.After(now) {
		return false
	}
	return true
}

// Start marks the job as running. Callers must hold the registry lock; this
// is the claim step.
func (j *Job) Start() {
	j.Status = JobStatusRunning
}

// Cancel marks the job as cancelled. Cancelled is terminal: the dispatch
// loop never reschedules a cancelled job.
func (j *Job) Cancel() {
	j.Status = JobStatusCancelled
}

// ApplyResult folds one execution outcome into the job: terminal status and
// last-run time.
func (j *Job) ApplyResult(result *JobResult) {
	j.Status = result.Status
	completed := result.CompletedAt
	j.LastRun = &completed
}

// Clone returns a copy of the job safe to hand outside the registry. Args
// share backing elements but the slice header is copied; time pointers are
// duplicated.
func (j *Job) Clone() *Job {
	c := *j
	if j.Args != nil {
		c.Args = make([]any, len(j.Args))
		copy(c.Args, j.Args)
	}
	if j.ScheduledFor != nil {
		t := *j.ScheduledFor
		c.ScheduledFor = &t
	}
	if j.LastRun != nil {
		t := *j.LastRun
		c.LastRun = &t
	}
	if j.NextRun != nil {
		t := *j.NextRun
		c.NextRun = &t
	}
	return &c
}
