package engine

import (
	"sync"
	"time"
)

// ClaimLimiter throttles job claims with a sliding one-minute window.
// A zero limit disables throttling entirely.
type ClaimLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	claims []time.Time
	now    func() time.Time
}

// NewClaimLimiter creates a limiter allowing at most limit claims per
// minute across all workers. limit <= 0 means unlimited.
func NewClaimLimiter(limit int) *ClaimLimiter {
	return &ClaimLimiter{
		limit:  limit,
		window: time.Minute,
		now:    time.Now,
	}
}

// Allow reports whether another claim may proceed right now, and records it
// if so.
func (l *ClaimLimiter) Allow() bool {
	if l == nil || l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.claims) >= l.limit {
		return false
	}
	l.claims = append(l.claims, now)
	return true
}

// InWindow returns the number of claims recorded within the current window.
func (l *ClaimLimiter) InWindow() int {
	if l == nil || l.limit <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.claims)
}

// prune drops claims older than the window. Callers hold l.mu.
func (l *ClaimLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	keep := l.claims[:0]
	for _, t := range l.claims {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	l.claims = keep
}
