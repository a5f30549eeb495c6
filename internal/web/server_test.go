package web

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/cryptochart/internal/domain"
	"github.com/vitos/cryptochart/internal/infrastructure/exchange"
	"github.com/vitos/cryptochart/internal/infrastructure/storage"
	"github.com/vitos/cryptochart/internal/usecase"
	"go.uber.org/zap"
)

// fakeCryptoCompare answers histoday requests by fsym:
// BTC grows 100 -> 150, ETH fails with 503, DOGE returns no points.
func fakeCryptoCompare(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("fsym") {
		case "BTC":
			w.Write([]byte(`{"Response":"Success","Data":{"Data":[
				{"time":1600000000,"close":100},
				{"time":1700000000,"close":150}]}}`))
		case "ETH":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		case "DOGE":
			w.Write([]byte(`{"Response":"Success","Data":{"Data":[]}}`))
		default:
			http.Error(w, "unexpected", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	server  *Server
	http    *httptest.Server
	journal *storage.SQLiteJournal
}

func newTestEnv(t *testing.T, liveInterval time.Duration) *testEnv {
	t.Helper()
	upstream := fakeCryptoCompare(t)

	journal, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	registry := domain.NewCoinRegistry([]domain.CoinConfig{
		domain.NewCoinConfig("bitcoin", "BTC", "USD", 2000),
		domain.NewCoinConfig("ethereum", "ETH", "USD", 2000),
		domain.NewCoinConfig("dogecoin", "DOGE", "USD", 2000),
	})
	adapter := exchange.NewCryptoCompareAdapter(upstream.URL, "", time.Second)
	service := usecase.NewCoinService(registry, adapter, journal, zap.NewNop())

	srv, err := NewServer(":0", service, NewChartRenderer(600, 300), liveInterval, zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { srv.closeOnce.Do(func() { close(srv.done) }) })

	return &testEnv{server: srv, http: ts, journal: journal}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(e.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestLandingPage(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `href="/crypto/bitcoin"`)
	assert.Contains(t, body, `href="/crypto/ethereum"`)
	assert.Contains(t, body, `href="/crypto/dogecoin"`)
	assert.Contains(t, body, "Bitcoin")
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	resp, _ = env.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCoinPage_StatusMapping(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   []string
	}{
		{"Ok", "/crypto/bitcoin", http.StatusOK, []string{"Bitcoin", "$150.00", "+50.00%", "2023-11-14 22:13:20", "data:image/png;base64,"}},
		{"Unknown Coin", "/crypto/litecoin", http.StatusNotFound, []string{"Invalid cryptocurrency"}},
		{"Case Sensitive", "/crypto/Bitcoin", http.StatusNotFound, []string{"Invalid cryptocurrency"}},
		{"Upstream 503", "/crypto/ethereum", http.StatusInternalServerError, []string{"Error fetching data"}},
		{"Empty Series", "/crypto/dogecoin", http.StatusInternalServerError, []string{"Insufficient data"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := env.get(t, tt.path)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := html.UnescapeString(raw)
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestCoinPage_GrowthMarkup(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp, body := env.get(t, "/crypto/bitcoin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// html/template escapes "+" in text nodes.
	assert.Contains(t, body, `class="value up" id="total-growth">&#43;50.00%<`)
}

func TestChartPNG(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp, body := env.get(t, "/crypto/bitcoin/chart.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix([]byte(body), pngMagic))

	resp, _ = env.get(t, "/crypto/litecoin/chart.png")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.get(t, "/crypto/ethereum/chart.png")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCoinJSON(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp, body := env.get(t, "/api/crypto/bitcoin")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got coinViewJSON
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "BTC", got.Coin.Symbol)
	assert.Equal(t, "Bitcoin", got.Name)
	assert.Equal(t, 150.0, got.Metrics.LastPrice)
	assert.InDelta(t, 50.0, got.Metrics.GrowthPercent, 1e-9)
	assert.Equal(t, "+", got.Metrics.GrowthSign)
	assert.Equal(t, "+50.00%", got.Display.TotalGrowth)
	require.Len(t, got.Series, 2)
	assert.Equal(t, int64(1600000000), got.Series[0].Timestamp)

	resp, body = env.get(t, "/api/crypto/litecoin")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"not_found"`)

	resp, body = env.get(t, "/api/crypto/dogecoin")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, `"insufficient_data"`)
}

func TestListCoinsJSON(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	resp, body := env.get(t, "/api/coins")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var coins []domain.CoinConfig
	require.NoError(t, json.Unmarshal([]byte(body), &coins))
	require.Len(t, coins, 3)
	assert.Equal(t, "bitcoin", coins[0].ID)
	assert.Equal(t, 2000, coins[0].HistoryLimit)
}

func TestListFetchesJSON(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	env.get(t, "/crypto/bitcoin")
	env.get(t, "/crypto/ethereum")
	env.get(t, "/crypto/litecoin")

	resp, body := env.get(t, "/api/fetches?limit=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []domain.FetchRecord
	require.NoError(t, json.Unmarshal([]byte(body), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "ethereum", records[0].CoinID)
	assert.Equal(t, "fetch_failed", records[0].Status)
	assert.Equal(t, "bitcoin", records[1].CoinID)
	assert.Equal(t, "ok", records[1].Status)
	assert.Equal(t, 2, records[1].Points)

	resp, _ = env.get(t, "/api/fetches?limit=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	req, err := http.NewRequest(http.MethodGet, env.http.URL+"/status", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func wsURL(env *testEnv, path string) string {
	return "ws" + strings.TrimPrefix(env.http.URL, "http") + path
}

func TestLiveStream(t *testing.T) {
	env := newTestEnv(t, 20*time.Millisecond)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/crypto/bitcoin"), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	for i := 0; i < 2; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg LiveSummary
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "bitcoin", msg.Coin)
		assert.Equal(t, usecase.ViewOK, msg.Status)
		assert.Equal(t, 2, msg.Points)
		require.NotNil(t, msg.Metrics)
		assert.Equal(t, 150.0, msg.Metrics.LastPrice)
		require.NotNil(t, msg.Display)
		assert.Equal(t, "+50.00%", msg.Display.TotalGrowth)
	}
}

func TestLiveStream_ReportsFailures(t *testing.T) {
	env := newTestEnv(t, 20*time.Millisecond)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/crypto/ethereum"), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg LiveSummary
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, usecase.ViewFetchFailed, msg.Status)
	assert.Nil(t, msg.Metrics)
}

func TestLiveStream_UnknownCoin(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/crypto/litecoin"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLiveStream_ClosedOnShutdown(t *testing.T) {
	env := newTestEnv(t, 20*time.Millisecond)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/crypto/bitcoin"), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first LiveSummary
	require.NoError(t, conn.ReadJSON(&first))

	env.server.closeOnce.Do(func() { close(env.server.done) })

	// A summary already in flight may still arrive before the close frame.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestLiveStream_FirstPushWaitsForInterval(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env, "/ws/crypto/bitcoin"), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = conn.ReadMessage()
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())

	records, err := env.journal.ListFetches(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
