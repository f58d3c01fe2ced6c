package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WorkerStats is a point-in-time snapshot of one worker's run history
type WorkerStats struct {
	Name                string     `json:"name"`
	Interval            string     `json:"interval"`
	TotalRuns           int        `json:"total_runs"`
	SuccessfulRuns      int        `json:"successful_runs"`
	FailedRuns          int        `json:"failed_runs"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastRun             *time.Time `json:"last_run,omitempty"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}

type entry struct {
	worker   Worker
	interval time.Duration

	mu    sync.Mutex
	stats WorkerStats
}

func (e *entry) record(at time.Time, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	at = at.UTC()
	e.stats.TotalRuns++
	e.stats.LastRun = &at
	if err != nil {
		e.stats.FailedRuns++
		e.stats.ConsecutiveFailures++
		e.stats.LastError = err.Error()
		return
	}
	e.stats.SuccessfulRuns++
	e.stats.ConsecutiveFailures = 0
	e.stats.LastSuccess = &at
	e.stats.LastError = ""
}

func (e *entry) snapshot() WorkerStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Orchestrator runs each registered worker on its own goroutine loop:
// execute a pass (with retries), then sleep for the worker's interval.
// Shutdown waits up to the join timeout for the loops to drain and
// reports any that are still running.
type Orchestrator struct {
	entries     []*entry
	maxRetries  int
	retryDelay  time.Duration
	joinTimeout time.Duration
	logger      *zap.Logger
}

// NewOrchestrator creates an orchestrator with the shared retry policy
func NewOrchestrator(maxRetries int, retryDelay, joinTimeout time.Duration, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
		joinTimeout: joinTimeout,
		logger:      logger,
	}
}

// Register adds a worker with its run interval. Must be called before Run.
func (o *Orchestrator) Register(w Worker, interval time.Duration) {
	o.entries = append(o.entries, &entry{
		worker:   w,
		interval: interval,
		stats: WorkerStats{
			Name:     w.Name(),
			Interval: interval.String(),
		},
	})
}

// Run blocks until ctx is cancelled, then joins the worker loops
func (o *Orchestrator) Run(ctx context.Context) {
	done := make(map[string]chan struct{}, len(o.entries))
	for _, e := range o.entries {
		ch := make(chan struct{})
		done[e.worker.Name()] = ch
		go func(e *entry, ch chan struct{}) {
			defer close(ch)
			o.loop(ctx, e)
		}(e, ch)
	}

	o.logger.Info("Sync orchestrator started", zap.Int("workers", len(o.entries)))
	<-ctx.Done()
	o.logger.Info("Sync orchestrator stopping", zap.Duration("join_timeout", o.joinTimeout))

	deadline := time.NewTimer(o.joinTimeout)
	defer deadline.Stop()

	for _, ch := range done {
		select {
		case <-ch:
		case <-deadline.C:
			o.reportStragglers(done)
			return
		}
	}
	o.logger.Info("Sync orchestrator stopped")
}

func (o *Orchestrator) loop(ctx context.Context, e *entry) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		start := time.Now()
		err := executeWithRetry(ctx, e.worker, o.maxRetries, o.retryDelay)
		e.record(start, err)

		if err != nil && ctx.Err() == nil {
			o.logger.Error("Worker run failed after retries",
				zap.Error(err),
				zap.String("worker", e.worker.Name()))
		}
		if ctx.Err() != nil {
			return
		}

		timer.Reset(e.interval)
	}
}

func (o *Orchestrator) reportStragglers(done map[string]chan struct{}) {
	var stuck []string
	for name, ch := range done {
		select {
		case <-ch:
		default:
			stuck = append(stuck, name)
		}
	}
	o.logger.Warn("Workers still running at join timeout", zap.Strings("workers", stuck))
}

// Stats returns a snapshot for every registered worker
func (o *Orchestrator) Stats() []WorkerStats {
	stats := make([]WorkerStats, 0, len(o.entries))
	for _, e := range o.entries {
		stats = append(stats, e.snapshot())
	}
	return stats
}
