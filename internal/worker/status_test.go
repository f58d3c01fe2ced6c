package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourorg/marketdata-sync/internal/model"

	"go.uber.org/zap"
)

type fakeCounts struct {
	categories int
	assets     int
	current    int
	logs       []model.SyncLog
}

func (f *fakeCounts) CountCategories(ctx context.Context) (int, error)     { return f.categories, nil }
func (f *fakeCounts) CountAssets(ctx context.Context) (int, error)         { return f.assets, nil }
func (f *fakeCounts) CountCurrentCandles(ctx context.Context) (int, error) { return f.current, nil }
func (f *fakeCounts) GetRecentSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	return f.logs, nil
}

func TestStatusWriterWritesSnapshot(t *testing.T) {
	counts := &fakeCounts{categories: 8, assets: 120, current: 95}
	o := NewOrchestrator(0, time.Millisecond, time.Second, zap.NewNop())
	o.Register(&countingWorker{name: "categories"}, time.Hour)

	path := filepath.Join(t.TempDir(), "status", "worker_status.json")
	writer := NewStatusWriter(StatusSources{
		Categories:     counts,
		Assets:         counts,
		CurrentCandles: counts,
		SyncLogs:       counts,
	}, o, path, time.Hour, zap.NewNop())

	writer.write(context.Background())

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("status file not written: %v", err)
	}

	var snap StatusSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("status file not valid json: %v", err)
	}
	if snap.Categories != 8 || snap.Assets != 120 || snap.CurrentCandles != 95 {
		t.Errorf("counts: %+v", snap)
	}
	if len(snap.Workers) != 1 || snap.Workers[0].Name != "categories" {
		t.Errorf("workers: %+v", snap.Workers)
	}
	if snap.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}

	// rewrite replaces the document atomically
	counts.assets = 121
	writer.write(context.Background())

	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("rewritten file not valid json: %v", err)
	}
	if snap.Assets != 121 {
		t.Errorf("assets after rewrite: got %d, want 121", snap.Assets)
	}
}
