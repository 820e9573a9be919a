package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClaimLimiterUnlimited(t *testing.T) {
	l := NewClaimLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow())
	}
	assert.Zero(t, l.InWindow())
}

func TestClaimLimiterEnforcesBudget(t *testing.T) {
	l := NewClaimLimiter(3)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "fourth claim within the window is denied")
	assert.Equal(t, 3, l.InWindow())
}

func TestClaimLimiterSlidingWindow(t *testing.T) {
	l := NewClaimLimiter(2)

	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	// Half a window later the budget is still spent.
	l.now = func() time.Time { return now.Add(30 * time.Second) }
	assert.False(t, l.Allow())

	// Once the first claims age out, new claims are admitted.
	l.now = func() time.Time { return now.Add(61 * time.Second) }
	assert.True(t, l.Allow())
	assert.Equal(t, 1, l.InWindow())
}

func TestClaimLimiterNilSafe(t *testing.T) {
	var l *ClaimLimiter
	assert.True(t, l.Allow())
	assert.Zero(t, l.InWindow())
}
