package model

import (
	"time"
)

// Sync worker types recorded in sync_logs
const (
	SyncTypeCategories     = "categories"
	SyncTypeAssets         = "assets"
	SyncTypeCandles        = "candles"
	SyncTypeCurrentCandles = "current_candles"
)

// Terminal statuses of one worker run
const (
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusError   = "error"
)

// SyncLog is the audit record of one worker execution. A row is created
// when the run starts and finalized exactly once when it completes.
type SyncLog struct {
	ID         string     `json:"id" db:"id"`
	Type       string     `json:"type" db:"type"`
	Status     string     `json:"status" db:"status"`
	ItemsCount int        `json:"items_count" db:"items_count"`
	ErrorMsg   *string    `json:"error_msg,omitempty" db:"error_msg"`
	Duration   *float64   `json:"duration,omitempty" db:"duration"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// SyncResult is the outcome a worker reports when finalizing its log row
type SyncResult struct {
	Status     string
	ItemsCount int
	ErrorMsg   string
}
