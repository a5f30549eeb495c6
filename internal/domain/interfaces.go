package domain

import "context"

// HistoryProvider fetches daily close prices for a coin.
type HistoryProvider interface {
	GetDailyHistory(ctx context.Context, coin CoinConfig) (PriceSeries, error)
}

// FetchJournal stores pipeline outcomes for auditing. It never stores prices.
type FetchJournal interface {
	RecordFetch(ctx context.Context, rec *FetchRecord) error
	ListFetches(ctx context.Context, limit int) ([]*FetchRecord, error)
}
