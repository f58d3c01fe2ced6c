package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// countingWorker fails its first failures runs, then succeeds. When
// block is set a run waits on it, ignoring cancellation, to simulate a
// straggler that outlives the join timeout.
type countingWorker struct {
	name     string
	runs     atomic.Int32
	failures int32
	block    chan struct{}
}

func (w *countingWorker) Name() string { return w.name }

func (w *countingWorker) Run(ctx context.Context) error {
	n := w.runs.Add(1)
	if w.block != nil {
		<-w.block
	}
	if n <= w.failures {
		return errors.New("transient failure")
	}
	return nil
}

func TestExecuteWithRetryRecovers(t *testing.T) {
	w := &countingWorker{name: "candles", failures: 2}

	err := executeWithRetry(context.Background(), w, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("expected recovery within retry budget: %v", err)
	}
	if got := w.runs.Load(); got != 3 {
		t.Errorf("runs: got %d, want 3", got)
	}
}

func TestExecuteWithRetryExhausts(t *testing.T) {
	w := &countingWorker{name: "candles", failures: 100}

	err := executeWithRetry(context.Background(), w, 3, time.Millisecond)
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	// initial attempt plus three retries
	if got := w.runs.Load(); got != 4 {
		t.Errorf("runs: got %d, want 4", got)
	}
}

func TestExecuteWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &countingWorker{name: "candles", failures: 100}
	err := executeWithRetry(ctx, w, 10, time.Hour)
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
	if got := w.runs.Load(); got > 1 {
		t.Errorf("runs after cancel: got %d, want at most 1", got)
	}
}

func TestOrchestratorRunsAndStops(t *testing.T) {
	o := NewOrchestrator(0, time.Millisecond, time.Second, zap.NewNop())
	w := &countingWorker{name: "categories"}
	o.Register(w, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("orchestrator did not stop after cancellation")
	}

	if w.runs.Load() < 2 {
		t.Errorf("worker ran %d times, expected repeated runs", w.runs.Load())
	}

	stats := o.Stats()
	if len(stats) != 1 {
		t.Fatalf("stats: got %d entries", len(stats))
	}
	if stats[0].Name != "categories" {
		t.Errorf("name: got %s", stats[0].Name)
	}
	if stats[0].TotalRuns < 2 || stats[0].SuccessfulRuns < 2 {
		t.Errorf("stats not recorded: %+v", stats[0])
	}
	if stats[0].LastSuccess == nil {
		t.Error("last success not recorded")
	}
}

func TestOrchestratorJoinTimeoutReportsStragglers(t *testing.T) {
	o := NewOrchestrator(0, time.Millisecond, 50*time.Millisecond, zap.NewNop())
	w := &countingWorker{name: "slow", block: make(chan struct{})}
	defer close(w.block)
	o.Register(w, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()

	// let the worker start its blocking run, then stop
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("orchestrator must return after the join timeout")
	}
}

func TestOrchestratorRecordsFailures(t *testing.T) {
	o := NewOrchestrator(0, time.Millisecond, time.Second, zap.NewNop())
	w := &countingWorker{name: "assets", failures: 1000}
	o.Register(w, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(40 * time.Millisecond)
		cancel()
	}()
	o.Run(ctx)

	stats := o.Stats()
	if stats[0].FailedRuns == 0 {
		t.Error("failed runs not recorded")
	}
	if stats[0].ConsecutiveFailures == 0 {
		t.Error("consecutive failures not recorded")
	}
	if stats[0].LastError == "" {
		t.Error("last error not recorded")
	}
}
