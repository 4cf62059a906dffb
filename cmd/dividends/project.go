package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/ndewijer/Dividend-Income-Projector/internal/config"
)

type projectCmd struct {
	asOf        string
	projections bool
	json        bool
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "prints the dividend income timeline of the reference year" }
func (*projectCmd) Usage() string {
	return `dividends project [-asof YYYY-MM-DD] [-projections=false] [-json]

Loads the dividend history of every holding, projects the payments of the
reference year and prints the timeline with net income totals.

Payments dated before the reference date are received, the rest pending.
Payments rolled forward from last year are marked with '*'; pass
-projections=false to leave them out of the timeline and the totals.
`
}

func (c *projectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "asof", "", "Reference date (defaults to REFERENCE_DATE or today)")
	f.BoolVar(&c.projections, "projections", true, "Include payments projected from last year")
	f.BoolVar(&c.json, "json", false, "Print the dashboard as JSON")
}

func (c *projectCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	today, err := parseAsOf(c.asOf)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	dashboard, err := a.DividendService.Project(ctx, today, c.projections)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dashboard); err != nil {
			fmt.Fprintln(stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if err := writeDashboard(stdout, dashboard, config.DefaultCurrency); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
