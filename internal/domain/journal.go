package domain

import "time"

// FetchRecord is one row of the fetch journal.
type FetchRecord struct {
	ID            int64     `db:"id" json:"id"`
	CoinID        string    `db:"coin_id" json:"coin_id"`
	Status        string    `db:"status" json:"status"`
	Points        int       `db:"points" json:"points"`
	LastPrice     float64   `db:"last_price" json:"last_price"`
	GrowthPercent float64   `db:"growth_percent" json:"growth_percent"`
	DurationMs    int64     `db:"duration_ms" json:"duration_ms"`
	Error         string    `db:"error" json:"error,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
