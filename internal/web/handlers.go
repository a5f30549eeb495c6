package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/vitos/cryptochart/internal/domain"
	"github.com/vitos/cryptochart/internal/usecase"
	"go.uber.org/zap"
)

const (
	msgInvalidCoin      = "Invalid cryptocurrency"
	msgFetchFailed      = "Error fetching data"
	msgInsufficientData = "Insufficient data"
)

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	type CoinLink struct {
		domain.CoinConfig
		Name string
	}

	var coins []CoinLink
	for _, c := range s.service.Coins() {
		coins = append(coins, CoinLink{CoinConfig: c, Name: c.DisplayName()})
	}

	s.render(w, "index.html", map[string]interface{}{
		"Coins": coins,
	})
}

func (s *Server) handleCoinPage(w http.ResponseWriter, r *http.Request) {
	res := s.service.GetCoinView(r.Context(), r.PathValue("coin"))
	if !s.writeViewError(w, res) {
		return
	}

	plot, err := s.charts.RenderBase64(res.CoinName, res.Coin.QuoteCurrency, res.Series)
	if err != nil {
		s.logger.Error("Failed to render chart", zap.String("coin", res.Coin.ID), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view := NewMetricsView(res.Metrics)
	s.render(w, "crypto.html", map[string]interface{}{
		"PlotURL":       template.URL("data:image/png;base64," + plot),
		"CoinID":        res.Coin.ID,
		"CoinName":      res.CoinName,
		"Quote":         res.Coin.QuoteCurrency,
		"LastPrice":     view.LastPrice,
		"LastTimestamp": view.LastTimestamp,
		"TotalGrowth":   view.TotalGrowth,
		"Positive":      res.Metrics.GrowthSign == "+",
	})
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	res := s.service.GetCoinView(r.Context(), r.PathValue("coin"))
	if !s.writeViewError(w, res) {
		return
	}

	var buf bytes.Buffer
	if err := s.charts.RenderPNG(&buf, res.CoinName, res.Coin.QuoteCurrency, res.Series); err != nil {
		s.logger.Error("Failed to render chart", zap.String("coin", res.Coin.ID), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("Failed to write chart", zap.Error(err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OK\n"))
}

// writeViewError maps a failed pipeline result to its HTTP status and
// reports whether the caller should continue rendering.
func (s *Server) writeViewError(w http.ResponseWriter, res usecase.ViewResult) bool {
	switch res.Status {
	case usecase.ViewOK:
		return true
	case usecase.ViewNotFound:
		http.Error(w, msgInvalidCoin, http.StatusNotFound)
	case usecase.ViewInsufficientData:
		http.Error(w, msgInsufficientData, http.StatusInternalServerError)
	default:
		http.Error(w, msgFetchFailed, http.StatusInternalServerError)
	}
	return false
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
