package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vitos/cryptochart/internal/domain"
)

const (
	CryptoCompareHistoDayURL = "https://min-api.cryptocompare.com/data/v2/histoday"
	DefaultTimeout           = 10 * time.Second
)

type CryptoCompareAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCryptoCompareAdapter(baseURL, apiKey string, timeout time.Duration) *CryptoCompareAdapter {
	if baseURL == "" {
		baseURL = CryptoCompareHistoDayURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CryptoCompareAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// histoDayResponse mirrors the parts of the v2 histoday payload we read.
// Data.Data is a pointer so a missing field can be told apart from an empty list.
type histoDayResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     *struct {
		Data *[]struct {
			Time  *int64   `json:"time"`
			Close *float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

// GetDailyHistory issues one GET and returns the points in the order the API
// sent them. Every failure wraps domain.ErrFetchFailed; an empty list wraps
// domain.ErrInsufficientData.
func (a *CryptoCompareAdapter) GetDailyHistory(ctx context.Context, coin domain.CoinConfig) (domain.PriceSeries, error) {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base url: %v", domain.ErrFetchFailed, err)
	}
	q := u.Query()
	q.Set("fsym", coin.Symbol)
	q.Set("tsym", coin.QuoteCurrency)
	q.Set("limit", strconv.Itoa(coin.HistoryLimit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request [%s]: %v", domain.ErrFetchFailed, coin.Symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body [%s]: %v", domain.ErrFetchFailed, coin.Symbol, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: API error [%s]: %s", domain.ErrFetchFailed, coin.Symbol, resp.Status)
	}

	var result histoDayResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: JSON parse error [%s]: %v", domain.ErrFetchFailed, coin.Symbol, err)
	}

	if result.Response == "Error" {
		return nil, fmt.Errorf("%w: API error [%s]: %s", domain.ErrFetchFailed, coin.Symbol, result.Message)
	}

	if result.Data == nil || result.Data.Data == nil {
		return nil, fmt.Errorf("%w: missing Data.Data [%s]", domain.ErrFetchFailed, coin.Symbol)
	}

	raw := *result.Data.Data
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty series [%s]", domain.ErrInsufficientData, coin.Symbol)
	}

	series := make(domain.PriceSeries, 0, len(raw))
	for i, entry := range raw {
		if entry.Time == nil || entry.Close == nil {
			return nil, fmt.Errorf("%w: entry %d missing time/close [%s]", domain.ErrFetchFailed, i, coin.Symbol)
		}
		series = append(series, domain.PricePoint{
			Timestamp: *entry.Time,
			Close:     *entry.Close,
		})
	}

	return series, nil
}
