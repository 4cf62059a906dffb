package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/ndewijer/Dividend-Income-Projector/internal/history"
)

type fetchCmd struct {
	raw bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "prints a ticker's dividend history from upstream" }
func (*fetchCmd) Usage() string {
	return `dividends fetch [-raw] <ticker>

Queries the upstream provider for the ex-dividend history of a single ticker
and prints the decoded declarations. Nothing is stored.

With -raw the upstream payload is printed unchanged.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print the upstream payload unchanged")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "fetch takes exactly one ticker")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	data, err := a.DividendService.FetchRaw(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	if c.raw {
		stdout.Write(data)
		fmt.Fprintln(stdout)
		return subcommands.ExitSuccess
	}

	decls, errs := history.Decode(data)
	for _, err := range errs {
		fmt.Fprintln(stderr, "warning:", err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(decls); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
