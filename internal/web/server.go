package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/vitos/cryptochart/internal/usecase"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	router       *http.ServeMux
	server       *http.Server
	service      *usecase.CoinService
	charts       *ChartRenderer
	templates    *template.Template
	upgrader     websocket.Upgrader
	liveInterval time.Duration
	done         chan struct{}
	closeOnce    sync.Once
	logger       *zap.Logger
}

func NewServer(
	addr string,
	service *usecase.CoinService,
	charts *ChartRenderer,
	liveInterval time.Duration,
	logger *zap.Logger,
) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if liveInterval <= 0 {
		liveInterval = time.Minute
	}

	s := &Server{
		router:       http.NewServeMux(),
		service:      service,
		charts:       charts,
		templates:    tmpl,
		liveInterval: liveInterval,
		done:         make(chan struct{}),
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.routes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	gz := handlers.CompressHandler

	// Pages
	s.router.Handle("GET /{$}", gz(http.HandlerFunc(s.handleLanding)))
	s.router.Handle("GET /crypto/{coin}", gz(http.HandlerFunc(s.handleCoinPage)))
	s.router.HandleFunc("GET /crypto/{coin}/chart.png", s.handleChartPNG)

	// JSON
	s.router.Handle("GET /api/coins", gz(http.HandlerFunc(s.handleListCoinsJSON)))
	s.router.Handle("GET /api/crypto/{coin}", gz(http.HandlerFunc(s.handleCoinJSON)))
	s.router.Handle("GET /api/fetches", gz(http.HandlerFunc(s.handleListFetchesJSON)))

	// Live summary stream
	s.router.HandleFunc("GET /ws/crypto/{coin}", s.handleLive)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

// Handler returns the router wrapped in the request middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = s.accessLog(h)
	h = requestID(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zapPrintln{s.logger}),
	)(h)
	return h
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and ends live streams.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.server.Shutdown(ctx)
}
