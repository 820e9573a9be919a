package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobNotFoundSentinel(t *testing.T) {
	err := NewJobNotFound("JOB_missing")
	require.Error(t, err)

	assert.True(t, Is(err, ErrJobNotFound))
	assert.True(t, IsJobNotFound(err))
	assert.Contains(t, err.Error(), "JOB_missing")

	// Wrapping preserves the sentinel
	wrapped := Wrap(err, "failed to schedule")
	assert.True(t, IsJobNotFound(wrapped))
}

func TestIsJobNotFoundNilSafe(t *testing.T) {
	assert.False(t, IsJobNotFound(nil))
	assert.False(t, IsJobNotFound(New("some other error")))
}

func TestDetailsSurviveWrapping(t *testing.T) {
	err := WithDetail(New("base"), "Job ID: JOB_123")
	err = Wrap(err, "outer context")

	details := GetAllDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "Job ID: JOB_123", details[0])
}
