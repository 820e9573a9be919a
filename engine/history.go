package engine

import "sync"

// DefaultMaxHistory bounds the execution record when no limit is configured.
const DefaultMaxHistory = 1000

// History is a bounded FIFO record of job results. When full, appending
// evicts the oldest entry, so the buffer always holds the most recent
// executions.
type History struct {
	mu      sync.RWMutex
	max     int
	results []*JobResult
}

// NewHistory creates a history retaining at most max results. Non-positive
// values fall back to DefaultMaxHistory.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &History{
		max:     max,
		results: make([]*JobResult, 0, max),
	}
}

// Add appends a result, evicting the oldest entry when the buffer is full.
func (h *History) Add(result *JobResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.results) >= h.max {
		overflow := len(h.results) - h.max + 1
		h.results = append(h.results[:0], h.results[overflow:]...)
	}
	h.results = append(h.results, result)
}

// Results returns all retained results, oldest first.
func (h *History) Results() []*JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*JobResult, len(h.results))
	copy(out, h.results)
	return out
}

// ForJob returns the retained results for one job, oldest first.
func (h *History) ForJob(jobID string) []*JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []*JobResult
	for _, r := range h.results {
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of retained results.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}

// Clear drops all retained results.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = h.results[:0]
}
