package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryKeepsMostRecent(t *testing.T) {
	h := NewHistory(5)

	for i := 0; i < 10; i++ {
		h.Add(&JobResult{JobID: fmt.Sprintf("job-%d", i), Status: JobStatusCompleted})
	}

	results := h.Results()
	require.Len(t, results, 5)
	// The five newest survive, oldest first.
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("job-%d", i+5), r.JobID)
	}
	assert.Equal(t, 5, h.Len())
}

func TestHistoryForJob(t *testing.T) {
	h := NewHistory(10)
	h.Add(&JobResult{JobID: "a", Status: JobStatusCompleted})
	h.Add(&JobResult{JobID: "b", Status: JobStatusFailed})
	h.Add(&JobResult{JobID: "a", Status: JobStatusFailed})

	forA := h.ForJob("a")
	require.Len(t, forA, 2)
	assert.Equal(t, JobStatusCompleted, forA[0].Status)
	assert.Equal(t, JobStatusFailed, forA[1].Status)

	assert.Empty(t, h.ForJob("missing"))
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(10)
	h.Add(&JobResult{JobID: "a"})
	h.Add(&JobResult{JobID: "b"})
	require.Equal(t, 2, h.Len())

	h.Clear()
	assert.Zero(t, h.Len())
	assert.Empty(t, h.Results())
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < DefaultMaxHistory+10; i++ {
		h.Add(&JobResult{JobID: "x"})
	}
	assert.Equal(t, DefaultMaxHistory, h.Len())
}
