package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/emberworks/stoker/errors"
	"github.com/emberworks/stoker/logger"
)

// Executor runs a single job's task synchronously and produces a JobResult.
// It never touches the registry: callers pass in a job snapshot and fold the
// result back themselves. Retries happen inline within Execute, so by the
// time a result is returned the attempt budget for this claim is spent.
type Executor struct {
	retry RetryPolicy
	log   *zap.SugaredLogger

	// sleep is swapped in tests to avoid waiting out real backoff delays.
	sleep func(time.Duration)
}

// NewExecutor creates an executor with the given retry policy.
func NewExecutor(retry RetryPolicy) *Executor {
	return &Executor{
		retry: retry,
		log:   logger.Logger.Named("executor"),
		sleep: time.Sleep,
	}
}

// Execute runs the job's task, retrying failures per the retry policy, and
// returns the outcome. The returned result always carries a terminal status
// (completed, failed, or cancelled); Execute itself never returns an error
// because a task failure is data, not a fault in the executor.
//
// ctx bounds the whole attempt sequence. If the context is cancelled between
// attempts the result is cancelled; a task already in flight is waited for,
// since Task has no cancellation channel of its own.
//
// Because retries run inline, the calling worker occupies its pool slot for
// the full backoff sequence. Size MaxRetries and the backoff curve with the
// worker count in mind for tasks that fail slowly.
func (e *Executor) Execute(ctx context.Context, job *Job) *JobResult {
	started := time.Now()
	result := &JobResult{
		JobID:     job.ID,
		JobName:   job.Name,
		StartedAt: started,
	}

	maxRetries := job.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			result.Status = JobStatusCancelled
			result.Error = err.Error()
			break
		}

		data, err := e.runTask(ctx, job)
		if err == nil {
			result.Status = JobStatusCompleted
			result.Data = data
			result.Retries = attempt
			break
		}
		lastErr = err

		if attempt >= maxRetries {
			result.Status = JobStatusFailed
			result.Error = lastErr.Error()
			result.Retries = attempt
			break
		}

		delay := e.retry.NextDelay(attempt)
		e.log.Warnw("Job attempt failed, retrying",
			"job_id", job.ID,
			"job_name", job.Name,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"retry_in", delay,
			"error", err)
		e.sleep(delay)
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	return result
}

// runTask invokes the task with panic recovery and an optional timeout.
// A panicking task is converted to an error so one bad job cannot take the
// worker down.
func (e *Executor) runTask(ctx context.Context, job *Job) (data map[string]any, err error) {
	if job.Task == nil {
		return nil, errors.Newf("job %s has no task", job.ID)
	}

	type taskOutcome struct {
		data map[string]any
		err  error
	}

	invoke := func() (out taskOutcome) {
		defer func() {
			if r := recover(); r != nil {
				out.err = errors.Newf("task panicked: %v", r)
				e.log.Errorw("Job task panicked",
					"job_id", job.ID,
					"job_name", job.Name,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()))
			}
		}()
		out.data, out.err = job.Task(job.Args...)
		return out
	}

	if job.Timeout <= 0 {
		out := invoke()
		return out.data, out.err
	}

	done := make(chan taskOutcome, 1)
	go func() {
		done <- invoke()
	}()

	select {
	case out := <-done:
		return out.data, out.err
	case <-time.After(job.Timeout):
		// The goroutine keeps running; Task has no cancellation hook, so the
		// attempt is abandoned rather than interrupted.
		return nil, errors.Newf("task exceeded timeout of %s", job.Timeout)
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "task interrupted by shutdown")
	}
}
