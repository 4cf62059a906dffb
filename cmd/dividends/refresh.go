package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "re-fetches and stores the history of every holding" }
func (*refreshCmd) Usage() string {
	return `dividends refresh

Fetches the dividend history of every holding from upstream and replaces the
stored snapshots. Tickers that fail keep their previous snapshot. Exits with
a failure status when no ticker could be refreshed.
`
}

func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	result, err := a.DividendService.Refresh(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	writeRefresh(stdout, result)
	if len(result.Refreshed) == 0 && len(result.Failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
