package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitos/cryptochart/internal/config"
	"github.com/vitos/cryptochart/internal/domain"
	"github.com/vitos/cryptochart/internal/infrastructure/exchange"
	"github.com/vitos/cryptochart/internal/infrastructure/logger"
	"github.com/vitos/cryptochart/internal/infrastructure/storage"
	"github.com/vitos/cryptochart/internal/usecase"
	"go.uber.org/zap"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "cryptochart",
	Short: "Daily price history charts for a fixed set of cryptocurrencies",
	Long: `cryptochart fetches daily close prices from CryptoCompare, derives the
last price and the growth over the window, and serves a chart page per coin.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every command needs: config, logger and the pipeline.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	service *usecase.CoinService
	journal *storage.SQLiteJournal
}

func newApp(ctx context.Context, withJournal bool) (*app, error) {
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}

	var journal domain.FetchJournal
	if withJournal && cfg.Journal.Path != "" {
		a.journal, err = storage.NewSQLiteJournal(cfg.Journal.Path)
		if err != nil {
			log.Error("Failed to open fetch journal, continuing without it", zap.String("path", cfg.Journal.Path), zap.Error(err))
		} else {
			journal = a.journal
		}
	}

	adapter := exchange.NewCryptoCompareAdapter(cfg.API.BaseURL, cfg.API.APIKey, cfg.API.Timeout)
	a.service = usecase.NewCoinService(cfg.Registry(), adapter, journal, log)
	return a, nil
}

func (a *app) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("Failed to close journal", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
