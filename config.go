package bankledger

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Limits struct {
		Reads           int64         `yaml:"reads"`
		Writes          int64         `yaml:"writes"`
		Timeout         time.Duration `yaml:"timeout"`
		BreakerFailures uint32        `yaml:"breaker_failures"`
		BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
	} `yaml:"limits"`
	Rates RatesConfig `yaml:"rates"`
	Log   struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	NodeID int64 `yaml:"node_id"`
}

type RatesConfig struct {
	URL             string        `yaml:"url"`
	Currencies      []string      `yaml:"currencies"`
	TTL             time.Duration `yaml:"ttl"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
}

func DefaultConfig() Config {
	var cfg Config
	cfg.Store.Path = "data/bank.json"
	cfg.Server.Addr = ":3000"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Limits.Reads = 64
	cfg.Limits.Writes = 16
	cfg.Limits.Timeout = 2 * time.Second
	cfg.Limits.BreakerFailures = 5
	cfg.Limits.BreakerTimeout = 10 * time.Second
	cfg.Rates.URL = "https://api.frankfurter.app/latest"
	cfg.Rates.Currencies = []string{"USD", "GBP", "JPY", "CHF", "CAD", "AUD", "NZD", "SEK", "NOK", "CNY"}
	cfg.Rates.TTL = 5 * time.Minute
	cfg.Rates.BreakerTimeout = 30 * time.Second
	cfg.Rates.BreakerFailures = 3
	cfg.Log.Level = "info"
	cfg.NodeID = 1
	return cfg
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	if err = yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
