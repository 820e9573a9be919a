package engine

import (
	"sync"

	"github.com/emberworks/stoker/errors"
)

// RecurringJobScheduler layers cron-style registration on top of a
// Scheduler. The cron expression is stored as opaque metadata for operators
// and external tooling; it is never parsed or evaluated here. Actual
// scheduling comes from the RecurrenceSpec supplied alongside it.
type RecurringJobScheduler struct {
	scheduler *Scheduler

	mu          sync.RWMutex
	expressions map[string]string // job ID -> cron expression
}

// NewRecurringJobScheduler wraps a scheduler with cron-expression metadata
// tracking.
func NewRecurringJobScheduler(scheduler *Scheduler) *RecurringJobScheduler {
	return &RecurringJobScheduler{
		scheduler:   scheduler,
		expressions: make(map[string]string),
	}
}

// AddCronJob registers a recurring job annotated with a cron expression and
// returns its ID. The expression is recorded verbatim; rec drives when the
// job actually runs.
func (r *RecurringJobScheduler) AddCronJob(name string, kind JobKind, task Task, expression string, rec RecurrenceSpec, args ...any) string {
	job := NewJob(name, kind, task, args...)
	job.Recurrence = rec
	id := r.scheduler.AddJob(job)

	r.mu.Lock()
	r.expressions[id] = expression
	r.mu.Unlock()
	return id
}

// Expression returns the cron expression recorded for a job.
func (r *RecurringJobScheduler) Expression(jobID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expr, ok := r.expressions[jobID]
	if !ok {
		return "", errors.NewJobNotFound(jobID)
	}
	return expr, nil
}

// Expressions returns a copy of all recorded expressions keyed by job ID.
func (r *RecurringJobScheduler) Expressions() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.expressions))
	for id, expr := range r.expressions {
		out[id] = expr
	}
	return out
}

// Remove deletes the underlying job from the registry and forgets its
// expression. Past results stay in history.
func (r *RecurringJobScheduler) Remove(jobID string) error {
	r.mu.Lock()
	_, known := r.expressions[jobID]
	delete(r.expressions, jobID)
	r.mu.Unlock()

	if !known {
		return errors.NewJobNotFound(jobID)
	}
	return r.scheduler.RemoveJob(jobID)
}
