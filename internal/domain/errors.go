package domain

import "errors"

var (
	// ErrNotFound is returned for coin ids outside the configured set.
	ErrNotFound = errors.New("coin not found")
	// ErrFetchFailed covers transport, status and decoding failures of the history API.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrInsufficientData means the API returned no points.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnorderedSeries means timestamps were not strictly ascending.
	ErrUnorderedSeries = errors.New("series not ordered by time")
	// ErrZeroBasePrice means growth cannot be computed because the first close is 0.
	ErrZeroBasePrice = errors.New("first close price is zero")
)
