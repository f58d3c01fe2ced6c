package model

import (
	"time"

	"github.com/lib/pq"
)

// Category represents an instrument category (forex, crypto, stocks, ...)
// with the exchanges and timeframes that are valid for it
type Category struct {
	ID          string         `json:"id" db:"id"`
	Key         string         `json:"key" db:"key"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Icon        string         `json:"icon" db:"icon"`
	Exchanges   pq.StringArray `json:"exchanges" db:"exchanges"`
	Timeframes  pq.StringArray `json:"timeframes" db:"timeframes"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// CategoryInput holds the fields upserted by the categories sync worker
type CategoryInput struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Exchanges   []string `json:"exchanges"`
	Timeframes  []string `json:"timeframes"`
}
