package engine

import (
	"math"
	"time"
)

// Default retry knobs.
const (
	DefaultBackoffFactor = 2.0
	// MaxBackoffDelay caps the exponential curve so a high retry count never
	// produces an hours-long sleep inside a worker.
	MaxBackoffDelay = 5 * time.Minute
)

// RetryPolicy decides whether a failed execution is retried and how long to
// wait before each retry. Delays grow exponentially: factor^attempt seconds.
type RetryPolicy struct {
	MaxRetries    int
	BackoffFactor float64
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    DefaultMaxRetries,
		BackoffFactor: DefaultBackoffFactor,
	}
}

// ShouldRetry reports whether another attempt is allowed after the given
// result. Only failed results are retried; the per-job MaxRetries bounds the
// retry count for that job.
func (p RetryPolicy) ShouldRetry(result *JobResult, job *Job) bool {
	if !result.Failed() {
		return false
	}
	return result.Retries < job.MaxRetries
}

// NextDelay returns the backoff delay before the retry following the given
// zero-based attempt: factor^attempt seconds, capped at MaxBackoffDelay.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	factor := p.BackoffFactor
	if factor < 1 {
		factor = DefaultBackoffFactor
	}
	if attempt < 0 {
		attempt = 0
	}

	seconds := math.Pow(factor, float64(attempt))
	delay := time.Duration(seconds * float64(time.Second))
	if delay > MaxBackoffDelay || delay < 0 {
		return MaxBackoffDelay
	}
	return delay
}
