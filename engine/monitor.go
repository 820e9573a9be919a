package engine

import "time"

// Metrics is a point-in-time aggregate over the registry and the execution
// history.
type Metrics struct {
	TotalJobs     int
	PendingJobs   int
	RunningJobs   int
	CompletedJobs int
	FailedJobs    int
	CancelledJobs int

	TotalExecutions int
	Completed       int
	Failed          int
	Cancelled       int
	// SuccessRate is completed executions as a percentage of all recorded
	// executions, 0 when the history is empty.
	SuccessRate float64
	AvgDuration time.Duration
}

// Monitor derives metrics from a scheduler. It is strictly read-only: it
// observes through the scheduler's snapshot accessors and never mutates
// jobs or history.
type Monitor struct {
	scheduler *Scheduler
}

// NewMonitor creates a monitor over the given scheduler.
func NewMonitor(scheduler *Scheduler) *Monitor {
	return &Monitor{scheduler: scheduler}
}

// CollectMetrics computes current job counts by status and execution
// aggregates from history.
func (m *Monitor) CollectMetrics() Metrics {
	var metrics Metrics

	for _, job := range m.scheduler.Jobs() {
		metrics.TotalJobs++
		switch job.Status {
		case JobStatusPending:
			metrics.PendingJobs++
		case JobStatusRunning:
			metrics.RunningJobs++
		case JobStatusCompleted:
			metrics.CompletedJobs++
		case JobStatusFailed:
			metrics.FailedJobs++
		case JobStatusCancelled:
			metrics.CancelledJobs++
		}
	}

	results := m.scheduler.Results()
	metrics.TotalExecutions = len(results)

	var totalDuration time.Duration
	for _, r := range results {
		totalDuration += r.Duration
		switch r.Status {
		case JobStatusCompleted:
			metrics.Completed++
		case JobStatusFailed:
			metrics.Failed++
		case JobStatusCancelled:
			metrics.Cancelled++
		}
	}

	if metrics.TotalExecutions > 0 {
		metrics.SuccessRate = float64(metrics.Completed) / float64(metrics.TotalExecutions) * 100
		metrics.AvgDuration = totalDuration / time.Duration(metrics.TotalExecutions)
	}
	return metrics
}

// JobResults returns the retained results for one job, oldest first.
func (m *Monitor) JobResults(jobID string) []*JobResult {
	return m.scheduler.ResultsForJob(jobID)
}
