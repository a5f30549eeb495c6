package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/cryptochart/internal/domain"
	"github.com/vitos/cryptochart/internal/usecase"
	"go.uber.org/zap"
)

const liveWriteWait = 10 * time.Second

// LiveSummary is pushed to websocket clients on every refresh.
type LiveSummary struct {
	Coin    string                 `json:"coin"`
	Status  usecase.ViewStatus     `json:"status"`
	Points  int                    `json:"points,omitempty"`
	Metrics *domain.SummaryMetrics `json:"metrics,omitempty"`
	Display *MetricsView           `json:"display,omitempty"`
	At      time.Time              `json:"at"`
}

// handleLive re-runs the pipeline on a ticker and pushes each summary until
// the client goes away or the server shuts down.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	coinID := r.PathValue("coin")
	if _, err := s.service.Resolve(coinID); err != nil {
		http.Error(w, msgInvalidCoin, http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.String("coin", coinID), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read pump: only used to notice the client closing.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	log := s.logger.With(zap.String("coin", coinID), zap.String("request_id", RequestIDFrom(r.Context())))
	log.Debug("Live stream opened")

	ticker := time.NewTicker(s.liveInterval)
	defer ticker.Stop()

	// The page that opens the stream was rendered with fresh data, so the
	// first push waits for a full interval.
	for {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return
		}

		if err := s.pushSummary(ctx, conn, coinID); err != nil {
			log.Debug("Live stream closed", zap.Error(err))
			return
		}
	}
}

func (s *Server) pushSummary(ctx context.Context, conn *websocket.Conn, coinID string) error {
	res := s.service.GetCoinView(ctx, coinID)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	msg := LiveSummary{
		Coin:   coinID,
		Status: res.Status,
		At:     time.Now().UTC(),
	}
	if res.Status == usecase.ViewOK {
		view := NewMetricsView(res.Metrics)
		msg.Points = res.Series.Len()
		msg.Metrics = &res.Metrics
		msg.Display = &view
	}

	conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteJSON(msg)
}
