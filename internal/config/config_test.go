package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, StorageFile, cfg.Storage)
	assert.Equal(t, "accounts.json", cfg.File)
	assert.Equal(t, "BRL", cfg.Currency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"LEDGER_STORAGE":   "Postgres",
		"DATABASE_URL":     "postgres://localhost/ledger",
		"LEDGER_CURRENCY":  "usd",
		"LOG_FORMAT":       "TEXT",
		"SHUTDOWN_TIMEOUT": "3s",
	})
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without dsn": {"LEDGER_STORAGE": "postgres"},
		"unknown backend":      {"LEDGER_STORAGE": "sqlite"},
		"unknown log format":   {"LOG_FORMAT": "xml"},
		"empty file":           {"LEDGER_FILE": " "},
		"bad duration":         {"SHUTDOWN_TIMEOUT": "soon"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(vars)
			require.Error(t, err)
		})
	}
}
