package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinoosan/bankledger/internal/config"
	"github.com/tinoosan/bankledger/internal/service/account"
	"github.com/tinoosan/bankledger/internal/storage/file"
	"github.com/tinoosan/bankledger/internal/storage/memory"
	pgstore "github.com/tinoosan/bankledger/internal/storage/postgres"
)

// backend is what every storage adapter offers the binary.
type backend interface {
	account.Persister
	Ready(ctx context.Context) error
	// Init creates an empty ledger when none exists and reports whether it did.
	Init(ctx context.Context) (bool, error)
}

// openBackend selects the adapter named by cfg.Storage. The returned func releases it.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend, func(), error) {
	switch cfg.Storage {
	case config.StorageFile:
		logger.Info("storage backend: file", "path", cfg.File)
		return file.New(cfg.File, cfg.Currency, logger), func() {}, nil
	case config.StorageMemory:
		logger.Info("storage backend: memory")
		return memory.New(cfg.Currency), func() {}, nil
	case config.StoragePostgres:
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL, cfg.Currency)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("storage backend: postgres")
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
