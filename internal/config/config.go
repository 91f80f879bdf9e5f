package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
)

// Storage backends understood by the service.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Addr            string        `env:"LEDGER_ADDR" envDefault:":3000"`
	Storage         string        `env:"LEDGER_STORAGE" envDefault:"file"`
	File            string        `env:"LEDGER_FILE" envDefault:"accounts.json"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	Currency        string        `env:"LEDGER_CURRENCY" envDefault:"BRL"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	LogFile         string        `env:"LOG_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return finish(cfg)
}

// LoadFrom reads the configuration from the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: vars})
	if err != nil {
		return nil, fmt.Errorf("config.LoadFrom: %w", err)
	}
	return finish(cfg)
}

func finish(cfg Config) (*Config, error) {
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations the struct tags cannot express.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageFile:
		if strings.TrimSpace(c.File) == "" {
			return errors.New("config: LEDGER_FILE is required for file storage")
		}
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("config: unknown LEDGER_STORAGE %q", c.Storage)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown LOG_FORMAT %q", c.LogFormat)
	}
	if c.Currency == "" {
		return errors.New("config: LEDGER_CURRENCY is required")
	}
	return nil
}
