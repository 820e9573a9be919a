package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyShouldRetry(t *testing.T) {
	policy := DefaultRetryPolicy()
	job := NewJob("flaky", JobKindCustom, noopTask)
	job.MaxRetries = 2

	failed := &JobResult{Status: JobStatusFailed, Retries: 0}
	assert.True(t, policy.ShouldRetry(failed, job))

	failed.Retries = 2
	assert.False(t, policy.ShouldRetry(failed, job), "retry budget exhausted")

	completed := &JobResult{Status: JobStatusCompleted}
	assert.False(t, policy.ShouldRetry(completed, job))

	cancelled := &JobResult{Status: JobStatusCancelled}
	assert.False(t, policy.ShouldRetry(cancelled, job))
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, BackoffFactor: 2.0}

	assert.Equal(t, time.Second, policy.NextDelay(0))
	assert.Equal(t, 2*time.Second, policy.NextDelay(1))
	assert.Equal(t, 4*time.Second, policy.NextDelay(2))
	assert.Equal(t, 8*time.Second, policy.NextDelay(3))
}

func TestRetryPolicyNextDelayCapped(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 100, BackoffFactor: 2.0}
	assert.Equal(t, MaxBackoffDelay, policy.NextDelay(30))
	assert.Equal(t, MaxBackoffDelay, policy.NextDelay(1000))
}

func TestRetryPolicyNextDelayInvalidFactor(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BackoffFactor: 0}
	// A shrinking or zero factor falls back to the default curve.
	assert.Equal(t, 2*time.Second, policy.NextDelay(1))
	assert.Equal(t, time.Second, policy.NextDelay(-1))
}
