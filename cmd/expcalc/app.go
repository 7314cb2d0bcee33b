package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/config"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/game/species"
	"github.com/cory-johannsen/expcalc/internal/observability"
	"github.com/cory-johannsen/expcalc/internal/report"
)

// flagKeys maps shared flag names to the config keys they override.
var flagKeys = map[string]string{
	"dataset":       "data.dataset",
	"species":       "data.species",
	"multiplier":    "calculator.multiplier",
	"game":          "calculator.game_filter",
	"verbose":       "calculator.verbose",
	"color":         "calculator.color",
	"top":           "calculator.top_n",
	"reference-max": "calculator.reference_max_rate",
	"workers":       "calculator.workers",
	"log-level":     "logging.level",
}

// commonFlags are the flags every data-driven command accepts. Only flags the
// user set override the configuration.
type commonFlags struct {
	fs         *flag.FlagSet
	configPath string
	dataset    string
	species    string
	multiplier bool
	game       string
	verbose    bool
	color      bool
	top        int
	refMax     int
	workers    int
	logLevel   string
}

func newFlagSet(name string, stderr io.Writer) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := &commonFlags{fs: fs}
	fs.StringVar(&cf.configPath, "config", "", "path to configuration file (empty = defaults and EXPCALC_ environment)")
	fs.StringVar(&cf.dataset, "dataset", "", "encounter dataset YAML")
	fs.StringVar(&cf.species, "species", "", "species table YAML replacing the built-in table")
	fs.BoolVar(&cf.multiplier, "multiplier", false, "apply the 1.5x EXP multiplier")
	fs.StringVar(&cf.game, "game", "", "restrict to one version: ruby, sapphire or emerald")
	fs.BoolVar(&cf.verbose, "verbose", false, "show the per-slot breakdown")
	fs.BoolVar(&cf.color, "color", false, "colour the output")
	fs.IntVar(&cf.top, "top", 0, "entries per ranking")
	fs.IntVar(&cf.refMax, "reference-max", 0, "trigger rate that scores efficiency equal to expected EXP")
	fs.IntVar(&cf.workers, "workers", 0, "locations analysed concurrently")
	fs.StringVar(&cf.logLevel, "log-level", "", "log level: debug, info, warn or error")
	return cf
}

func (cf *commonFlags) overrides() (map[string]interface{}, error) {
	out := make(map[string]interface{})
	var err error
	cf.fs.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "game":
			v, perr := location.ParseVersion(cf.game)
			if perr != nil {
				err = perr
				return
			}
			out[key] = string(v)
		default:
			out[key] = f.Value.(flag.Getter).Get()
		}
	})
	return out, err
}

// app holds everything a command needs after configuration is resolved.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	table    *species.Table
	calc     *encounter.Calculator
	analyzer *analysis.Analyzer
}

func newApp(cf *commonFlags) (*app, error) {
	overrides, err := cf.overrides()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWith(cf.configPath, overrides)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	table := species.Builtin()
	if cfg.Data.Species != "" {
		table, err = species.LoadTableFromFile(cfg.Data.Species)
		if err != nil {
			return nil, err
		}
	}
	calc, err := encounter.NewCalculator(table,
		encounter.WithLogger(logger),
		encounter.WithCacheSize(cfg.Calculator.CacheSize),
	)
	if err != nil {
		return nil, err
	}
	analyzer := analysis.New(calc,
		analysis.WithLogger(logger),
		analysis.WithWorkers(cfg.Calculator.Workers),
		analysis.WithReferenceMaxRate(cfg.Calculator.ReferenceMaxRate),
	)
	return &app{cfg: cfg, logger: logger, table: table, calc: calc, analyzer: analyzer}, nil
}

// loadDataset reads the configured dataset and applies the game filter.
func (a *app) loadDataset() (*location.Dataset, error) {
	start := time.Now()
	ds, err := location.LoadDatasetFromFile(a.cfg.Data.Dataset)
	if err != nil {
		return nil, err
	}
	ds = ds.Filter(location.Version(a.cfg.Calculator.GameFilter))
	a.logger.Debug("dataset loaded",
		zap.String("path", a.cfg.Data.Dataset),
		zap.Int("locations", len(ds.Locations)),
		zap.String("game_filter", a.cfg.Calculator.GameFilter),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func (a *app) reportOptions() report.Options {
	return report.Options{
		Verbose:          a.cfg.Calculator.Verbose,
		Color:            a.cfg.Calculator.Color,
		Multiplier:       a.cfg.Calculator.Multiplier,
		Game:             a.cfg.Calculator.GameFilter,
		ReferenceMaxRate: a.cfg.Calculator.ReferenceMaxRate,
	}
}
