package engine

import "time"

// JobResult is the immutable record of one execution attempt. Once the
// executor returns a result it is never mutated; history and subscribers
// receive it as-is.
type JobResult struct {
	JobID       string
	JobName     string
	Status      JobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Data        map[string]any
	Error       string
	Retries     int
}

// Succeeded reports whether the execution completed without error.
func (r *JobResult) Succeeded() bool {
	return r.Status == JobStatusCompleted
}

// Failed reports whether the execution ended in failure. Cancelled results
// are neither succeeded nor failed.
func (r *JobResult) Failed() bool {
	return r.Status == JobStatusFailed
}
