package domain

import "time"

// PricePoint is one daily close as returned by the history API.
type PricePoint struct {
	Timestamp int64   `json:"time"`  // Unix seconds, UTC
	Close     float64 `json:"close"` // quote currency units
}

func (p PricePoint) Time() time.Time {
	return time.Unix(p.Timestamp, 0).UTC()
}

// PriceSeries is ordered by timestamp, oldest first.
type PriceSeries []PricePoint

func (s PriceSeries) Len() int { return len(s) }

func (s PriceSeries) First() PricePoint { return s[0] }

func (s PriceSeries) Last() PricePoint { return s[len(s)-1] }

// Ascending reports whether timestamps strictly increase.
func (s PriceSeries) Ascending() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp <= s[i-1].Timestamp {
			return false
		}
	}
	return true
}

func (s PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Time()
	}
	return out
}

func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// SummaryMetrics is derived from a non-empty PriceSeries.
type SummaryMetrics struct {
	LastPrice     float64 `json:"last_price"`
	LastTimestamp int64   `json:"last_timestamp"`
	GrowthPercent float64 `json:"growth_percent"`
	GrowthSign    string  `json:"growth_sign"` // "+" or ""
}

func (m SummaryMetrics) LastTime() time.Time {
	return time.Unix(m.LastTimestamp, 0).UTC()
}
