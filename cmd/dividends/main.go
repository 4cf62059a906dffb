// Command dividends projects the portfolio's dividend income from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&projectCmd{}, "projection")
	commander.Register(&exportCmd{}, "projection")
	commander.Register(&fetchCmd{}, "history")
	commander.Register(&refreshCmd{}, "history")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
