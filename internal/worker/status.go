package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/yourorg/marketdata-sync/internal/model"

	"go.uber.org/zap"
)

type categoryCounter interface {
	CountCategories(ctx context.Context) (int, error)
}

type assetCounter interface {
	CountAssets(ctx context.Context) (int, error)
}

type currentCandleCounter interface {
	CountCurrentCandles(ctx context.Context) (int, error)
}

type syncLogReader interface {
	GetRecentSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error)
}

// StatusSources groups the read-only stores the status writer samples
type StatusSources struct {
	Categories     categoryCounter
	Assets         assetCounter
	CurrentCandles currentCandleCounter
	SyncLogs       syncLogReader
}

// StatusSnapshot is the JSON document the status writer publishes
type StatusSnapshot struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	Categories     int             `json:"categories"`
	Assets         int             `json:"assets"`
	CurrentCandles int             `json:"current_candles"`
	Workers        []WorkerStats   `json:"workers"`
	RecentSyncs    []model.SyncLog `json:"recent_syncs"`
}

// StatusWriter periodically snapshots table counts and worker stats to
// a JSON file. Writes are best effort: a failed write is logged and the
// next tick tries again.
type StatusWriter struct {
	sources      StatusSources
	orchestrator *Orchestrator
	path         string
	interval     time.Duration
	logger       *zap.Logger
}

func NewStatusWriter(sources StatusSources, orchestrator *Orchestrator, path string, interval time.Duration, logger *zap.Logger) *StatusWriter {
	return &StatusWriter{
		sources:      sources,
		orchestrator: orchestrator,
		path:         path,
		interval:     interval,
		logger:       logger,
	}
}

// Run writes one snapshot immediately, then on every interval tick
func (s *StatusWriter) Run(ctx context.Context) {
	if s.path == "" {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.write(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.write(ctx)
		}
	}
}

func (s *StatusWriter) write(ctx context.Context) {
	snap, err := s.collect(ctx)
	if err != nil {
		s.logger.Warn("Status snapshot collection failed", zap.Error(err))
		return
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Warn("Status snapshot encoding failed", zap.Error(err))
		return
	}

	// Write to a sibling temp file and rename so readers never see a
	// partial document
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn("Status directory creation failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Warn("Status file write failed", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn("Status file rename failed", zap.Error(err))
	}
}

func (s *StatusWriter) collect(ctx context.Context) (*StatusSnapshot, error) {
	categories, err := s.sources.Categories.CountCategories(ctx)
	if err != nil {
		return nil, err
	}
	assets, err := s.sources.Assets.CountAssets(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.sources.CurrentCandles.CountCurrentCandles(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.sources.SyncLogs.GetRecentSyncLogs(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &StatusSnapshot{
		GeneratedAt:    time.Now().UTC(),
		Categories:     categories,
		Assets:         assets,
		CurrentCandles: current,
		Workers:        s.orchestrator.Stats(),
		RecentSyncs:    recent,
	}, nil
}
