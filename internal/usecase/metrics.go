package usecase

import (
	"github.com/shopspring/decimal"
	"github.com/vitos/cryptochart/internal/domain"
)

// DeriveMetrics computes the window summary. It is pure: the same series
// always yields the same metrics. A one-point series has zero growth.
func DeriveMetrics(series domain.PriceSeries) (domain.SummaryMetrics, error) {
	if series.Len() == 0 {
		return domain.SummaryMetrics{}, domain.ErrInsufficientData
	}

	first, last := series.First(), series.Last()
	if first.Close == 0 {
		return domain.SummaryMetrics{}, domain.ErrZeroBasePrice
	}

	firstDec := decimal.NewFromFloat(first.Close)
	lastDec := decimal.NewFromFloat(last.Close)
	growth, _ := lastDec.Sub(firstDec).Div(firstDec).Mul(decimal.NewFromInt(100)).Float64()

	sign := ""
	if growth > 0 {
		sign = "+"
	}

	return domain.SummaryMetrics{
		LastPrice:     last.Close,
		LastTimestamp: last.Timestamp,
		GrowthPercent: growth,
		GrowthSign:    sign,
	}, nil
}
