package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitos/cryptochart/internal/web"
	"go.uber.org/zap"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chart web server",
	Long: `Start the web server.

Routes:
  GET /                         landing page
  GET /crypto/{coin}            chart page
  GET /crypto/{coin}/chart.png  raw chart
  GET /api/crypto/{coin}        metrics and series as JSON
  GET /ws/crypto/{coin}         live summary over websocket`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serverHost, "host", "H", "", "Server host (overrides config)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if serverHost != "" {
		a.cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		a.cfg.Server.Port = serverPort
	}

	charts := web.NewChartRenderer(a.cfg.Chart.Width, a.cfg.Chart.Height)
	server, err := web.NewServer(a.cfg.Addr(), a.service, charts, a.cfg.Live.RefreshInterval, a.log)
	if err != nil {
		return fmt.Errorf("failed to init web server: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.log.Error("Server failed", zap.Error(err))
		}
		return err
	case sig := <-stop:
		a.log.Info("Shutting down...", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		a.log.Warn("Graceful shutdown incomplete", zap.Error(err))
	}
	return nil
}
