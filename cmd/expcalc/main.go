// Package main provides the expcalc binary: expected-EXP reports, efficiency
// rankings, location search, battle projections and CSV export for Generation 3
// wild encounters.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: expcalc <command> [flags]

commands:
  report     full per-location report grouped by version
  rankings   efficiency rankings per method and overall
  search     report for locations matching a name
  battles    battles needed to reach a target level
  curve      cumulative EXP table of a growth curve
  export     CSV of every location and method
  snapshot   store an analysis run in PostgreSQL, or show a stored one

run "expcalc <command> -h" for command flags
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command func(ctx context.Context, args []string, stdout, stderr io.Writer) error

var commands = map[string]command{
	"report":   runReport,
	"rankings": runRankings,
	"search":   runSearch,
	"battles":  runBattles,
	"curve":    runCurve,
	"export":   runExport,
	"snapshot": runSnapshot,
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("missing command")
	}
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, args[1:], stdout, stderr)
}
