package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/tinoosan/bankledger/internal/config"
	"github.com/tinoosan/bankledger/internal/ledger"
	"github.com/tinoosan/bankledger/internal/logging"
	"github.com/tinoosan/bankledger/internal/service/account"
)

type accountsCmd struct {
	id int64
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "print accounts of the configured ledger" }
func (*accountsCmd) Usage() string {
	return `accounts [-id <account id>]

  Prints every account as one JSON document per line, or the balance of a
  single account when -id is given.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Print only the balance of this account")
}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	svc, err := account.New(store, account.Config{Currency: cfg.Currency, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.id != 0 {
		bal, err := svc.Balance(ctx, c.id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(bal.Decimal().String())
		return subcommands.ExitSuccess
	}

	accs, err := svc.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	codec := ledger.Codec{Currency: cfg.Currency}
	for _, a := range accs {
		doc, err := codec.EncodeAccount(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(doc))
	}
	return subcommands.ExitSuccess
}
