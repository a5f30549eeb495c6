package domain

import (
	"sort"
	"strings"
)

// CoinConfig describes one supported coin. Values are fixed at startup.
type CoinConfig struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	QuoteCurrency string `json:"quote_currency"`
	HistoryLimit  int    `json:"history_limit"`
}

func NewCoinConfig(id, symbol, quoteCurrency string, historyLimit int) CoinConfig {
	return CoinConfig{
		ID:            id,
		Symbol:        strings.ToUpper(symbol),
		QuoteCurrency: strings.ToUpper(quoteCurrency),
		HistoryLimit:  historyLimit,
	}
}

// DisplayName returns the route id title-cased, e.g. "bitcoin" -> "Bitcoin".
func (c CoinConfig) DisplayName() string {
	if c.ID == "" {
		return ""
	}
	return strings.ToUpper(c.ID[:1]) + c.ID[1:]
}

// CoinRegistry is the read-only set of supported coins keyed by route id.
// It is built once and may be shared between goroutines without locking.
type CoinRegistry struct {
	coins map[string]CoinConfig
	ids   []string
}

func NewCoinRegistry(coins []CoinConfig) *CoinRegistry {
	r := &CoinRegistry{coins: make(map[string]CoinConfig, len(coins))}
	for _, c := range coins {
		if _, dup := r.coins[c.ID]; !dup {
			r.ids = append(r.ids, c.ID)
		}
		r.coins[c.ID] = c
	}
	sort.Strings(r.ids)
	return r
}

// Lookup is an exact, case-sensitive match on the route id.
func (r *CoinRegistry) Lookup(id string) (CoinConfig, bool) {
	c, ok := r.coins[id]
	return c, ok
}

// List returns the coins ordered by id.
func (r *CoinRegistry) List() []CoinConfig {
	out := make([]CoinConfig, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.coins[id])
	}
	return out
}

func (r *CoinRegistry) Len() int {
	return len(r.coins)
}
