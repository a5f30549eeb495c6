package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitos/cryptochart/internal/domain"
	"go.uber.org/zap"
)

type ViewStatus string

const (
	ViewOK               ViewStatus = "ok"
	ViewNotFound         ViewStatus = "not_found"
	ViewFetchFailed      ViewStatus = "fetch_failed"
	ViewInsufficientData ViewStatus = "insufficient_data"
	// ViewCanceled means the caller went away before the pipeline finished.
	// It is not an upstream failure and is never journaled.
	ViewCanceled ViewStatus = "canceled"
)

// ViewResult is the outcome of one pipeline run. Series and Metrics are only
// set when Status is ViewOK; Err carries the cause otherwise.
type ViewResult struct {
	Status   ViewStatus
	Coin     domain.CoinConfig
	CoinName string
	Series   domain.PriceSeries
	Metrics  domain.SummaryMetrics
	Err      error
}

// CoinService resolves coin ids, fetches their history and derives metrics.
// It keeps no per-request state and is safe for concurrent use.
type CoinService struct {
	registry *domain.CoinRegistry
	provider domain.HistoryProvider
	journal  domain.FetchJournal // optional
	logger   *zap.Logger
	timeNow  func() time.Time // For testing
}

func NewCoinService(registry *domain.CoinRegistry, provider domain.HistoryProvider, journal domain.FetchJournal, logger *zap.Logger) *CoinService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoinService{
		registry: registry,
		provider: provider,
		journal:  journal,
		logger:   logger,
		timeNow:  time.Now,
	}
}

func (s *CoinService) Coins() []domain.CoinConfig {
	return s.registry.List()
}

func (s *CoinService) Resolve(coinID string) (domain.CoinConfig, error) {
	coin, ok := s.registry.Lookup(coinID)
	if !ok {
		return domain.CoinConfig{}, fmt.Errorf("%w: %q", domain.ErrNotFound, coinID)
	}
	return coin, nil
}

// FetchSeries returns the provider's series after checking it is non-empty
// and strictly ascending by time.
func (s *CoinService) FetchSeries(ctx context.Context, coin domain.CoinConfig) (domain.PriceSeries, error) {
	series, err := s.provider.GetDailyHistory(ctx, coin)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) || errors.Is(err, domain.ErrFetchFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series [%s]", domain.ErrInsufficientData, coin.Symbol)
	}
	if !series.Ascending() {
		return nil, fmt.Errorf("%w [%s]", domain.ErrUnorderedSeries, coin.Symbol)
	}
	return series, nil
}

func (s *CoinService) DeriveMetrics(series domain.PriceSeries) (domain.SummaryMetrics, error) {
	return DeriveMetrics(series)
}

// GetCoinView runs resolve, fetch and derive for one request. It never
// returns an error; failures are reported through ViewResult.Status.
func (s *CoinService) GetCoinView(ctx context.Context, coinID string) ViewResult {
	start := s.timeNow()

	coin, err := s.Resolve(coinID)
	if err != nil {
		s.logger.Info("Unknown coin requested", zap.String("coin", coinID))
		return ViewResult{Status: ViewNotFound, Err: err}
	}

	res := ViewResult{Coin: coin, CoinName: coin.DisplayName()}

	series, err := s.FetchSeries(ctx, coin)
	if err == nil {
		var metrics domain.SummaryMetrics
		metrics, err = s.DeriveMetrics(series)
		if err == nil {
			res.Status = ViewOK
			res.Series = series
			res.Metrics = metrics
		}
	}
	if err != nil && ctx.Err() != nil {
		res.Status = ViewCanceled
		res.Err = err
		s.logger.Debug("Coin view canceled", zap.String("coin", coinID), zap.Error(ctx.Err()))
		return res
	}
	if err != nil {
		res.Status = classify(err)
		res.Err = err
		s.logger.Error("Failed to build coin view",
			zap.String("coin", coinID),
			zap.String("status", string(res.Status)),
			zap.Error(err))
	} else {
		s.logger.Debug("Coin view ready",
			zap.String("coin", coinID),
			zap.Int("points", series.Len()),
			zap.Float64("growth_pct", res.Metrics.GrowthPercent))
	}

	s.record(ctx, res, s.timeNow().Sub(start))
	return res
}

func classify(err error) ViewStatus {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ViewNotFound
	case errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrZeroBasePrice):
		return ViewInsufficientData
	default:
		return ViewFetchFailed
	}
}

func (s *CoinService) record(ctx context.Context, res ViewResult, took time.Duration) {
	if s.journal == nil {
		return
	}
	rec := &domain.FetchRecord{
		CoinID:        res.Coin.ID,
		Status:        string(res.Status),
		Points:        res.Series.Len(),
		LastPrice:     res.Metrics.LastPrice,
		GrowthPercent: res.Metrics.GrowthPercent,
		DurationMs:    took.Milliseconds(),
		CreatedAt:     s.timeNow().UTC(),
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	// Journal failures must not fail the request.
	if err := s.journal.RecordFetch(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("Failed to record fetch", zap.String("coin", res.Coin.ID), zap.Error(err))
	}
}

func (s *CoinService) RecentFetches(ctx context.Context, limit int) ([]*domain.FetchRecord, error) {
	if s.journal == nil {
		return []*domain.FetchRecord{}, nil
	}
	return s.journal.ListFetches(ctx, limit)
}
