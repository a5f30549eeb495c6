package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/cryptochart/internal/domain"
	"github.com/vitos/cryptochart/internal/usecase"
)

const epsilon = 0.000001

func TestDeriveMetrics(t *testing.T) {
	tests := []struct {
		name       string
		series     domain.PriceSeries
		wantLast   float64
		wantTS     int64
		wantGrowth float64
		wantSign   string
	}{
		{
			"Rise -> Plus Sign",
			domain.PriceSeries{{Timestamp: 1600000000, Close: 100}, {Timestamp: 1700000000, Close: 150}},
			150, 1700000000, 50.0, "+",
		},
		{
			"Fall -> No Sign",
			domain.PriceSeries{{Timestamp: 1600000000, Close: 100}, {Timestamp: 1700000000, Close: 80}},
			80, 1700000000, -20.0, "",
		},
		{
			"Flat -> Zero, No Sign",
			domain.PriceSeries{{Timestamp: 1, Close: 42}, {Timestamp: 2, Close: 7}, {Timestamp: 3, Close: 42}},
			42, 3, 0, "",
		},
		{
			"Single Point -> Zero Growth",
			domain.PriceSeries{{Timestamp: 10, Close: 0.25}},
			0.25, 10, 0, "",
		},
		{
			"Only First And Last Matter",
			domain.PriceSeries{{Timestamp: 1, Close: 0.1}, {Timestamp: 2, Close: 1000}, {Timestamp: 3, Close: 0.3}},
			0.3, 3, 200, "+",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := usecase.DeriveMetrics(tt.series)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLast, m.LastPrice)
			assert.Equal(t, tt.wantTS, m.LastTimestamp)
			assert.InDelta(t, tt.wantGrowth, m.GrowthPercent, epsilon)
			assert.Equal(t, tt.wantSign, m.GrowthSign)
		})
	}
}

func TestDeriveMetrics_IsDeterministic(t *testing.T) {
	series := domain.PriceSeries{
		{Timestamp: 1600000000, Close: 10432.17},
		{Timestamp: 1650000000, Close: 38000.01},
		{Timestamp: 1700000000, Close: 36512.9},
	}
	first, err := usecase.DeriveMetrics(series)
	require.NoError(t, err)
	second, err := usecase.DeriveMetrics(series)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeriveMetrics_SignMatchesDirection(t *testing.T) {
	for _, last := range []float64{0, 0.5, 99.999, 100, 100.0001, 250} {
		m, err := usecase.DeriveMetrics(domain.PriceSeries{{Timestamp: 1, Close: 100}, {Timestamp: 2, Close: last}})
		require.NoError(t, err)
		if last > 100 {
			assert.Equal(t, "+", m.GrowthSign, "last=%v", last)
		} else {
			assert.Equal(t, "", m.GrowthSign, "last=%v", last)
		}
	}
}

func TestDeriveMetrics_Errors(t *testing.T) {
	_, err := usecase.DeriveMetrics(nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = usecase.DeriveMetrics(domain.PriceSeries{})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = usecase.DeriveMetrics(domain.PriceSeries{{Timestamp: 1, Close: 0}, {Timestamp: 2, Close: 5}})
	assert.ErrorIs(t, err, domain.ErrZeroBasePrice)
}
