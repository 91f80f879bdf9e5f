package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/tinoosan/bankledger/internal/config"
	"github.com/tinoosan/bankledger/internal/httpapi"
	"github.com/tinoosan/bankledger/internal/logging"
	"github.com/tinoosan/bankledger/internal/service/account"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the account ledger HTTP service" }
func (*serveCmd) Usage() string {
	return `serve [-addr <host:port>]

  Serves the account API until interrupted. Configuration comes from the
  environment (LEDGER_* variables, DATABASE_URL, LOG_*), optionally from .env.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides LEDGER_ADDR")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.addr != "" {
		cfg.Addr = c.addr
	}
	logger, closeLog, err := logging.Open(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeLog()

	store, closeStore, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage setup failed", "err", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	svc, err := account.New(store, account.Config{Currency: cfg.Currency, Logger: logger})
	if err != nil {
		logger.Error("service setup failed", "err", err)
		return subcommands.ExitFailure
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(svc, store, logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger service listening", "addr", srv.Addr, "currency", cfg.Currency)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
			return subcommands.ExitFailure
		}
		logger.Info("server stopped")
		return subcommands.ExitSuccess
	case err := <-errCh:
		logger.Error("server error", "err", err)
		return subcommands.ExitFailure
	}
}
