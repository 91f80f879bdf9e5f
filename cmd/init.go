package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/tinoosan/bankledger/internal/config"
	"github.com/tinoosan/bankledger/internal/logging"
)

type initCmd struct{}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create an empty ledger in the configured storage" }
func (*initCmd) Usage() string {
	return `init

  Writes an empty ledger (nextId 1, no accounts) unless one already exists.
`
}

func (*initCmd) SetFlags(*flag.FlagSet) {}

func (*initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	store, closeStore, err := openBackend(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	created, err := store.Init(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if created {
		fmt.Println("ledger created")
	} else {
		fmt.Println("ledger already present")
	}
	return subcommands.ExitSuccess
}
