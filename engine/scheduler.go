package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emberworks/stoker/errors"
	"github.com/emberworks/stoker/logger"
)

// Config holds the scheduler's runtime knobs.
type Config struct {
	Workers         int
	PollInterval    time.Duration
	MaxHistory      int
	ShutdownTimeout time.Duration
	ClaimsPerMinute int
	Retry           RetryPolicy
}

// DefaultConfig returns the scheduler defaults: five workers polling every
// second, a 1000-entry history, and a five second shutdown grace period.
func DefaultConfig() Config {
	return Config{
		Workers:         5,
		PollInterval:    time.Second,
		MaxHistory:      DefaultMaxHistory,
		ShutdownTimeout: 5 * time.Second,
		Retry:           DefaultRetryPolicy(),
	}
}

// Scheduler owns the job registry and a pool of polling workers. All registry
// state is guarded by a single mutex; task execution happens outside the
// lock so a slow job never blocks registration, cancellation, or claims by
// other workers.
type Scheduler struct {
	mu    sync.Mutex
	jobs  map[string]*Job
	order []string // registration order, for deterministic claim scans

	config   Config
	executor *Executor
	history  *History
	limiter  *ClaimLimiter
	log      *zap.SugaredLogger

	// Subscribers receive a snapshot of each job after its state changes.
	subscribers map[string]chan *Job

	parentCtx context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool

	// timeNow is swapped in tests to control readiness checks.
	timeNow func() time.Time
}

// NewScheduler creates a stopped scheduler with the given configuration.
// Call Start to launch the worker pool.
func NewScheduler(ctx context.Context, config Config) *Scheduler {
	if config.Workers < 0 {
		config.Workers = 0
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 5 * time.Second
	}
	if config.Retry.BackoffFactor < 1 {
		config.Retry = DefaultRetryPolicy()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return &Scheduler{
		jobs:        make(map[string]*Job),
		config:      config,
		executor:    NewExecutor(config.Retry),
		history:     NewHistory(config.MaxHistory),
		limiter:     NewClaimLimiter(config.ClaimsPerMinute),
		log:         logger.Logger.Named("scheduler"),
		subscribers: make(map[string]chan *Job),
		parentCtx:   ctx,
		ctx:         ctx,
		timeNow:     time.Now,
	}
}

// AddJob registers a job and returns its ID. The registry stores its own
// copy, so later writes through the caller's pointer never reach registry
// state. Registering the same ID twice replaces the earlier entry.
func (s *Scheduler) AddJob(job *Job) string {
	owned := job.Clone()

	s.mu.Lock()
	if _, exists := s.jobs[owned.ID]; !exists {
		s.order = append(s.order, owned.ID)
	}
	s.jobs[owned.ID] = owned
	snapshot := owned.Clone()
	s.mu.Unlock()

	s.log.Infow("Job added",
		"job_id", snapshot.ID,
		"job_name", snapshot.Name,
		"kind", snapshot.Kind,
		"recurrence", snapshot.Recurrence.Kind)
	s.notifySubscribers(snapshot)
	return snapshot.ID
}

// Schedule is a convenience wrapper: build a job from a task, set its
// earliest run time and recurrence, and register it, returning the new ID.
func (s *Scheduler) Schedule(name string, kind JobKind, task Task, at *time.Time, rec RecurrenceSpec, args ...any) string {
	job := NewJob(name, kind, task, args...)
	job.ScheduledFor = at
	job.NextRun = at
	job.Recurrence = rec
	return s.AddJob(job)
}

// ScheduleJob sets the earliest run time and recurrence of an existing job.
func (s *Scheduler) ScheduleJob(jobID string, at *time.Time, rec RecurrenceSpec) error {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if !ok {
		s.mu.Unlock()
		return errors.NewJobNotFound(jobID)
	}
	job.ScheduledFor = at
	job.NextRun = at
	job.Recurrence = rec
	snapshot := job.Clone()
	s.mu.Unlock()

	s.log.Infow("Job scheduled",
		"job_id", jobID,
		"at", at,
		"recurrence", rec.Kind)
	s.notifySubscribers(snapshot)
	return nil
}

// GetJob returns a snapshot of the job with the given ID.
func (s *Scheduler) GetJob(jobID string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, errors.NewJobNotFound(jobID)
	}
	return job.Clone(), nil
}

// Jobs returns snapshots of all registered jobs in registration order.
func (s *Scheduler) Jobs() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Job, 0, len(s.order))
	for _, id := range s.order {
		if job, ok := s.jobs[id]; ok {
			out = append(out, job.Clone())
		}
	}
	return out
}

// JobsByStatus returns snapshots of all jobs currently in the given status,
// in registration order.
func (s *Scheduler) JobsByStatus(status JobStatus) []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Job
	for _, id := range s.order {
		if job, ok := s.jobs[id]; ok && job.Status == status {
			out = append(out, job.Clone())
		}
	}
	return out
}

// ReadyJobs returns snapshots of all jobs that would be eligible for a
// claim right now, in registration order.
func (s *Scheduler) ReadyJobs() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeNow()
	var out []*Job
	for _, id := range s.order {
		if job, ok := s.jobs[id]; ok && job.IsReady(now) {
			out = append(out, job.Clone())
		}
	}
	return out
}

// CancelJob transitions a running job to cancelled. The in-flight execution
// finishes, but the job keeps the cancelled status afterwards and is never
// rescheduled. Cancelling a job in any other state is a no-op; an unknown
// ID is an error so callers can distinguish a typo from a harmless cancel.
func (s *Scheduler) CancelJob(jobID string) error {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if !ok {
		s.mu.Unlock()
		return errors.NewJobNotFound(jobID)
	}
	if job.Status != JobStatusRunning {
		s.mu.Unlock()
		s.log.Debugw("Cancel ignored for non-running job",
			"job_id", jobID,
			"status", job.Status)
		return nil
	}
	job.Cancel()
	snapshot := job.Clone()
	s.mu.Unlock()

	s.log.Infow("Job cancelled", "job_id", jobID, "job_name", snapshot.Name)
	s.notifySubscribers(snapshot)
	return nil
}

// SetEnabled pauses or resumes a job without losing its schedule. Disabled
// jobs are skipped by the claim scan.
func (s *Scheduler) SetEnabled(jobID string, enabled bool) error {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if !ok {
		s.mu.Unlock()
		return errors.NewJobNotFound(jobID)
	}
	job.Enabled = enabled
	snapshot := job.Clone()
	s.mu.Unlock()

	s.log.Infow("Job enabled state changed", "job_id", jobID, "enabled", enabled)
	s.notifySubscribers(snapshot)
	return nil
}

// RemoveJob deletes a job from the registry. Its past results stay in
// history. If the job is mid-execution its result is discarded at finalize.
func (s *Scheduler) RemoveJob(jobID string) error {
	s.mu.Lock()
	if _, ok := s.jobs[jobID]; !ok {
		s.mu.Unlock()
		return errors.NewJobNotFound(jobID)
	}
	delete(s.jobs, jobID)
	for i, id := range s.order {
		if id == jobID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.log.Infow("Job removed", "job_id", jobID)
	return nil
}

// Results returns all retained execution results, oldest first.
func (s *Scheduler) Results() []*JobResult {
	return s.history.Results()
}

// ResultsForJob returns the retained results for one job, oldest first.
func (s *Scheduler) ResultsForJob(jobID string) []*JobResult {
	return s.history.ForJob(jobID)
}

// ClearResults drops all retained execution results.
func (s *Scheduler) ClearResults() {
	s.history.Clear()
	s.log.Infow("Job history cleared")
}

// History exposes the underlying result record for monitoring.
func (s *Scheduler) History() *History {
	return s.history
}

// Subscribe registers a channel that receives a job snapshot after every
// state change. Sends are non-blocking: a subscriber that falls behind
// misses updates rather than stalling the scheduler.
func (s *Scheduler) Subscribe(id string) chan *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *Job, 64)
	s.subscribers[id] = ch
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (s *Scheduler) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subscribers[id]; ok {
		delete(s.subscribers, id)
		close(ch)
	}
}

func (s *Scheduler) notifySubscribers(snapshot *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			s.log.Debugw("Subscriber channel full, dropping update",
				"subscriber", id,
				"job_id", snapshot.ID)
		}
	}
}

// Start launches the worker pool. Calling Start on a running scheduler is a
// no-op, so callers can Start defensively.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	parent := s.parentCtx
	if parent == nil {
		parent = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(parent)
	s.running = true
	workers := s.config.Workers
	ctx := s.ctx
	s.mu.Unlock()

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.log.Infow("Scheduler started",
		"workers", workers,
		"poll_interval", s.config.PollInterval,
		"max_history", s.config.MaxHistory)
}

// Stop signals the workers and waits up to the configured shutdown timeout
// for in-flight executions to finish. Jobs still running after the deadline
// are abandoned to their goroutines.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Infow("Scheduler stopped")
	case <-time.After(s.config.ShutdownTimeout):
		s.log.Warnw("Scheduler shutdown timed out with jobs still running",
			"timeout", s.config.ShutdownTimeout)
	}
}

// IsRunning reports whether the worker pool is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce claims and executes at most one ready job on the caller's
// goroutine. It reports whether a job ran. Useful for drains and tests.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	claimed := s.claimNext()
	if claimed == nil {
		return false
	}
	s.execute(ctx, claimed)
	return true
}

// worker polls for ready jobs until its context is cancelled. The context
// is captured at spawn time so a lingering worker from a timed-out Stop can
// never observe a later Start's context. Consecutive claim-or-execute
// panics back the worker off exponentially so a persistent fault cannot
// spin the pool.
func (s *Scheduler) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	log := s.log.Named("worker").With("worker", id)
	log.Debugw("Worker started")

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	consecutiveErrors := 0
	for {
		select {
		case <-ctx.Done():
			log.Debugw("Worker stopping")
			return
		case <-ticker.C:
			if err := s.pollOnce(ctx); err != nil {
				consecutiveErrors++
				backoff := time.Duration(1<<uint(min(consecutiveErrors, 5))) * time.Second
				if backoff > 30*time.Second {
					backoff = 30 * time.Second
				}
				log.Errorw("Worker poll failed, backing off",
					"consecutive_errors", consecutiveErrors,
					"backoff", backoff,
					"error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
				continue
			}
			consecutiveErrors = 0
		}
	}
}

// pollOnce claims and runs at most one job, converting panics to errors so
// the worker loop's backoff can absorb them.
func (s *Scheduler) pollOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("worker panic: %v", r)
		}
	}()

	claimed := s.claimNext()
	if claimed == nil {
		return nil
	}
	s.execute(ctx, claimed)
	return nil
}

// claimNext atomically claims the first ready job: under the lock it flips
// the job to running and returns a snapshot for execution. Holding the lock
// for the whole scan-and-flip is what guarantees no two workers ever claim
// the same job. The rate limiter is consulted only once a ready job is
// found, so idle polls never spend claim budget.
func (s *Scheduler) claimNext() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeNow()
	for _, id := range s.order {
		job, ok := s.jobs[id]
		if !ok || !job.IsReady(now) {
			continue
		}
		if !s.limiter.Allow() {
			s.log.Debugw("Claim deferred by rate limit", "job_id", id)
			return nil
		}
		job.Start()
		return job.Clone()
	}
	return nil
}

// execute runs the claimed snapshot outside the lock, then folds the result
// back into the registry.
func (s *Scheduler) execute(ctx context.Context, claimed *Job) {
	s.log.Infow("Executing job",
		"job_id", claimed.ID,
		"job_name", claimed.Name,
		"kind", claimed.Kind)
	s.notifySubscribers(claimed)

	result := s.executor.Execute(ctx, claimed)
	s.finalize(claimed, result)
}

// finalize applies an execution result under the lock: record history,
// update the registry job, and reschedule recurring work. Status changes
// that raced with the execution win: a job cancelled while running stays
// cancelled, and a removed job's result is recorded but not applied. An
// execution interrupted by shutdown puts the job back to pending.
func (s *Scheduler) finalize(claimed *Job, result *JobResult) {
	s.history.Add(result)

	s.mu.Lock()
	job, ok := s.jobs[claimed.ID]
	if !ok {
		s.mu.Unlock()
		s.log.Debugw("Job removed mid-execution, result recorded only",
			"job_id", claimed.ID)
		return
	}

	if job.Status == JobStatusCancelled {
		now := result.CompletedAt
		job.LastRun = &now
		snapshot := job.Clone()
		s.mu.Unlock()

		s.log.Infow("Job finished after cancellation, not rescheduling",
			"job_id", claimed.ID,
			"job_name", claimed.Name)
		s.notifySubscribers(snapshot)
		return
	}

	if result.Status == JobStatusCancelled {
		// The execution was interrupted by shutdown, not by a cancel
		// request: give the claim back so the work runs on a later cycle.
		job.Status = JobStatusPending
		snapshot := job.Clone()
		s.mu.Unlock()

		s.log.Infow("Job execution interrupted, returned to pending",
			"job_id", claimed.ID,
			"job_name", claimed.Name)
		s.notifySubscribers(snapshot)
		return
	}

	job.ApplyResult(result)

	if delay, ok := job.Recurrence.Next(); ok {
		next := result.CompletedAt.Add(delay)
		job.Status = JobStatusPending
		job.ScheduledFor = &next
		job.NextRun = &next
	} else {
		job.NextRun = nil
	}
	snapshot := job.Clone()
	s.mu.Unlock()

	if result.Succeeded() {
		s.log.Infow("Job completed",
			"job_id", claimed.ID,
			"job_name", claimed.Name,
			"duration", result.Duration,
			"retries", result.Retries)
	} else {
		s.log.Errorw("Job failed",
			"job_id", claimed.ID,
			"job_name", claimed.Name,
			"duration", result.Duration,
			"retries", result.Retries,
			"error", result.Error)
	}
	if snapshot.NextRun != nil {
		s.log.Debugw("Job rescheduled",
			"job_id", claimed.ID,
			"next_run", snapshot.NextRun)
	}
	s.notifySubscribers(snapshot)
}
