package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/vitos/cryptochart/internal/domain"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "CRYPTOCHART_"

type CoinEntry struct {
	ID            string `yaml:"id"`
	Symbol        string `yaml:"symbol"`
	QuoteCurrency string `yaml:"quote_currency"`
	HistoryLimit  int    `yaml:"history_limit"`
}

type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url" env:"API_BASE_URL, overwrite"`
		APIKey  string        `yaml:"api_key" env:"API_KEY, overwrite"`
		Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT, overwrite"`
	} `yaml:"api"`
	Coins   []CoinEntry `yaml:"coins"`
	Logging struct {
		Level string `yaml:"level" env:"LOG_LEVEL, overwrite"`
		File  string `yaml:"file" env:"LOG_FILE, overwrite"`
	} `yaml:"logging"`
	Server struct {
		Host string `yaml:"host" env:"SERVER_HOST, overwrite"`
		Port int    `yaml:"port" env:"SERVER_PORT, overwrite"`
	} `yaml:"server"`
	Chart struct {
		Width  int `yaml:"width" env:"CHART_WIDTH, overwrite"`
		Height int `yaml:"height" env:"CHART_HEIGHT, overwrite"`
	} `yaml:"chart"`
	Live struct {
		RefreshInterval time.Duration `yaml:"refresh_interval" env:"LIVE_REFRESH_INTERVAL, overwrite"`
	} `yaml:"live"`
	Journal struct {
		Path string `yaml:"path" env:"JOURNAL_PATH, overwrite"`
	} `yaml:"journal"`
}

// Default mirrors config/config.yaml so the binary runs without a file.
func Default() *Config {
	cfg := &Config{
		Coins: []CoinEntry{
			{ID: "bitcoin", Symbol: "BTC", QuoteCurrency: "USD", HistoryLimit: 2000},
			{ID: "ethereum", Symbol: "ETH", QuoteCurrency: "USD", HistoryLimit: 2000},
			{ID: "dogecoin", Symbol: "DOGE", QuoteCurrency: "USD", HistoryLimit: 2000},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads an optional .env file, the YAML file at path and then
// CRYPTOCHART_* environment overrides. A missing YAML file yields defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		cfg = Default()
	default:
		return nil, err
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, envconfig.OsLookuper()),
	}); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://min-api.cryptocompare.com/data/v2/histoday"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1200
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 600
	}
	if c.Live.RefreshInterval <= 0 {
		c.Live.RefreshInterval = time.Minute
	}
	for i := range c.Coins {
		if c.Coins[i].QuoteCurrency == "" {
			c.Coins[i].QuoteCurrency = "USD"
		}
		if c.Coins[i].HistoryLimit == 0 {
			c.Coins[i].HistoryLimit = 2000
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Coins) == 0 {
		return errors.New("config: no coins configured")
	}
	seen := make(map[string]bool, len(c.Coins))
	for i, coin := range c.Coins {
		if coin.ID == "" {
			return fmt.Errorf("config: coins[%d]: empty id", i)
		}
		if seen[coin.ID] {
			return fmt.Errorf("config: coins[%d]: duplicate id %q", i, coin.ID)
		}
		seen[coin.ID] = true
		if coin.Symbol == "" {
			return fmt.Errorf("config: coin %q: empty symbol", coin.ID)
		}
		if coin.HistoryLimit < 0 {
			return fmt.Errorf("config: coin %q: history_limit must not be negative", coin.ID)
		}
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid api.base_url %q", c.API.BaseURL)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	if c.Chart.Width < 0 || c.Chart.Height < 0 {
		return errors.New("config: chart size must be positive")
	}
	return nil
}

// Registry builds the immutable coin set used by the pipeline.
func (c *Config) Registry() *domain.CoinRegistry {
	coins := make([]domain.CoinConfig, 0, len(c.Coins))
	for _, e := range c.Coins {
		coins = append(coins, domain.NewCoinConfig(e.ID, e.Symbol, e.QuoteCurrency, e.HistoryLimit))
	}
	return domain.NewCoinRegistry(coins)
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
