package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vitos/cryptochart/internal/domain"
	"github.com/vitos/cryptochart/internal/usecase"
	"go.uber.org/zap"
)

type coinViewJSON struct {
	Coin    domain.CoinConfig     `json:"coin"`
	Name    string                `json:"name"`
	Metrics domain.SummaryMetrics `json:"metrics"`
	Display MetricsView           `json:"display"`
	Series  domain.PriceSeries    `json:"series"`
}

func (s *Server) handleListCoinsJSON(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Coins())
}

func (s *Server) handleCoinJSON(w http.ResponseWriter, r *http.Request) {
	res := s.service.GetCoinView(r.Context(), r.PathValue("coin"))
	if res.Status != usecase.ViewOK {
		s.writeJSON(w, statusCode(res.Status), map[string]string{"status": string(res.Status)})
		return
	}

	s.writeJSON(w, http.StatusOK, coinViewJSON{
		Coin:    res.Coin,
		Name:    res.CoinName,
		Metrics: res.Metrics,
		Display: NewMetricsView(res.Metrics),
		Series:  res.Series,
	})
}

func (s *Server) handleListFetchesJSON(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := s.service.RecentFetches(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list fetches", zap.Error(err))
		http.Error(w, "Failed to list fetches", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*domain.FetchRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func statusCode(status usecase.ViewStatus) int {
	switch status {
	case usecase.ViewOK:
		return http.StatusOK
	case usecase.ViewNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
