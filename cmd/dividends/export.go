package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

type exportCmd struct {
	asOf        string
	projections bool
	output      string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "writes an offline JSON snapshot of the projection" }
func (*exportCmd) Usage() string {
	return `dividends export [-asof YYYY-MM-DD] [-projections=false] [-o file]

Writes the holdings, projected events, summary and refresh metadata as one
JSON document. The snapshot can be served or inspected without network
access. Writes to stdout unless -o is given.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asOf, "asof", "", "Reference date (defaults to REFERENCE_DATE or today)")
	f.BoolVar(&c.projections, "projections", true, "Include payments projected from last year")
	f.StringVar(&c.output, "o", "", "Output file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	snapshot, err := a.DividendService.Export(ctx, today, c.projections)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	var w io.Writer = stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	if c.output != "" {
		fmt.Fprintf(stderr, "snapshot %s written to %s\n", snapshot.ID, c.output)
	}
	return subcommands.ExitSuccess
}
