// Package main converts a decompilation wild_encounters.json into the native
// encounter dataset YAML.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cory-johannsen/expcalc/internal/config"
	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/importer"
	"github.com/cory-johannsen/expcalc/internal/importer/emerald"
	"github.com/cory-johannsen/expcalc/internal/observability"
)

func main() {
	format := flag.String("format", "emerald", "source format: emerald (pokeemerald / pokeruby wild_encounters.json)")
	source := flag.String("source", "", "path to wild_encounters.json")
	output := flag.String("output", "", "path of the dataset YAML to write")
	game := flag.String("game", "", "keep only one version: ruby, sapphire or emerald")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	if *source == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: import-encounters -source <wild_encounters.json> -output <dataset.yaml> [-game <version>]")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var filter location.Version
	if *game != "" {
		filter, err = location.ParseVersion(*game)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	var src importer.Source
	switch *format {
	case "emerald":
		src = emerald.NewSource(emerald.WithVersionFilter(filter), emerald.WithLogger(logger))
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (supported: emerald)\n", *format)
		os.Exit(1)
	}

	start := time.Now()
	imp := importer.New(src, logger)
	if err := imp.Run(*source, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}
