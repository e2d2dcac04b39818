// Command bankctl inspects a ledger store from the operator's side.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&checkCmd{log: &logger}, "store")
	commander.Register(&historyCmd{log: &logger}, "customers")
	commander.Register(&statementCmd{log: &logger}, "customers")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
