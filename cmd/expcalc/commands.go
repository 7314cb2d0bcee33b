package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/growth"
	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/game/projection"
	"github.com/cory-johannsen/expcalc/internal/report"
	"github.com/cory-johannsen/expcalc/internal/storage/postgres"
)

// analyzeAll loads the dataset and evaluates every location in it.
func (a *app) analyzeAll(ctx context.Context) ([]analysis.LocationResult, error) {
	ds, err := a.loadDataset()
	if err != nil {
		return nil, err
	}
	return a.analyzer.Analyze(ctx, ds, a.cfg.Calculator.Multiplier)
}

func setup(name string, args []string, stderr io.Writer, extra func(*commonFlags)) (*app, *commonFlags, error) {
	cf := newFlagSet(name, stderr)
	if extra != nil {
		extra(cf)
	}
	if err := cf.fs.Parse(args); err != nil {
		return nil, nil, err
	}
	a, err := newApp(cf)
	if err != nil {
		return nil, nil, err
	}
	return a, cf, nil
}

func runReport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a, _, err := setup("report", args, stderr, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	results, err := a.analyzeAll(ctx)
	if err != nil {
		return err
	}
	return report.Text(stdout, results, a.reportOptions())
}

func runRankings(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a, _, err := setup("rankings", args, stderr, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	results, err := a.analyzeAll(ctx)
	if err != nil {
		return err
	}
	opts := a.reportOptions()
	if err := report.Rankings(stdout, results, a.cfg.Calculator.TopN, opts); err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	return report.Overall(stdout, results, a.cfg.Calculator.TopN, opts)
}

func runSearch(_ context.Context, args []string, stdout, stderr io.Writer) error {
	a, cf, err := setup("search", args, stderr, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	query := strings.Join(cf.fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("usage: expcalc search [flags] <location name>")
	}
	matches, err := a.searchLocations(query)
	if err != nil {
		return err
	}
	return report.Search(stdout, matches, a.reportOptions())
}

// searchLocations evaluates every location whose name, map or ID contains query.
func (a *app) searchLocations(query string) ([]analysis.LocationResult, error) {
	ds, err := a.loadDataset()
	if err != nil {
		return nil, err
	}
	mgr, err := location.NewManager(ds)
	if err != nil {
		return nil, err
	}
	locs := mgr.Search(query)
	out := make([]analysis.LocationResult, 0, len(locs))
	for _, loc := range locs {
		lr, err := a.analyzer.AnalyzeLocation(ds.Rates, loc, a.cfg.Calculator.Multiplier)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	a.logger.Debug("search complete", zap.String("query", query), zap.Int("matches", len(out)))
	return out, nil
}

func runBattles(_ context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		speciesID string
		level     int
		exp       int
		target    int
		perBattle float64
		where     string
		method    string
	)
	a, _, err := setup("battles", args, stderr, func(cf *commonFlags) {
		cf.fs.StringVar(&speciesID, "pokemon", "", "species name or SPECIES_ constant (required)")
		cf.fs.IntVar(&level, "level", 1, "current level")
		cf.fs.IntVar(&exp, "exp", -1, "current total EXP (negative = exactly at -level)")
		cf.fs.IntVar(&target, "target", 0, "target level (required)")
		cf.fs.Float64Var(&perBattle, "per-battle", 0, "expected EXP per battle; overrides -location")
		cf.fs.StringVar(&where, "location", "", "grind location searched by name")
		cf.fs.StringVar(&method, "method", encounter.MethodLand.String(), "encounter method at -location: grass, surfing, rock_smash, fishing_old_rod, fishing_good_rod, fishing_super_rod")
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if speciesID == "" || target == 0 {
		return fmt.Errorf("usage: expcalc battles -pokemon <name> -level <n> -target <n> (-per-battle <exp> | -location <name> [-method <m>])")
	}

	var grind report.Grind
	if perBattle <= 0 && where != "" {
		m, err := encounter.ParseMethod(method)
		if err != nil {
			return err
		}
		mr, name, err := a.grindMethod(where, m)
		if err != nil {
			return err
		}
		perBattle = mr.Expectation.ExpectedExp
		grind = report.Grind{Location: name, Method: m.Title()}
	}

	plan, err := projection.NewPlan(a.table, speciesID, level, exp, target, perBattle)
	if err != nil {
		return err
	}
	return report.BattlePlan(stdout, plan, grind, a.reportOptions())
}

// grindMethod returns method m at the first location matching query.
func (a *app) grindMethod(query string, m encounter.Method) (analysis.MethodResult, string, error) {
	matches, err := a.searchLocations(query)
	if err != nil {
		return analysis.MethodResult{}, "", err
	}
	if len(matches) == 0 {
		return analysis.MethodResult{}, "", fmt.Errorf("no location matches %q", query)
	}
	lr := matches[0]
	mr, ok := lr.Method(m)
	if !ok {
		avail := make([]string, 0, len(lr.Methods))
		for _, have := range lr.Methods {
			avail = append(avail, have.Method.String())
		}
		return analysis.MethodResult{}, "", fmt.Errorf("%s (%s) has no %s encounters; available: %s",
			lr.Location.Name, lr.Location.Version, m, strings.Join(avail, ", "))
	}
	return mr, fmt.Sprintf("%s (%s)", lr.Location.Name, lr.Location.Version), nil
}

func runCurve(_ context.Context, args []string, stdout, stderr io.Writer) error {
	var name string
	var from, to int
	_, _, err := setup("curve", args, stderr, func(cf *commonFlags) {
		cf.fs.StringVar(&name, "curve", growth.MediumFast.String(), "growth curve name")
		cf.fs.IntVar(&from, "from", 1, "first level")
		cf.fs.IntVar(&to, "to", growth.MaxLevel, "last level")
	})
	if err != nil {
		return err
	}
	c, err := growth.ParseCurve(name)
	if err != nil {
		return err
	}
	if from < 1 || to > growth.MaxLevel || from > to {
		return fmt.Errorf("%w: need 1 <= from <= to <= %d, got %d..%d", projection.ErrInvalidLevel, growth.MaxLevel, from, to)
	}
	return report.Curve(stdout, c, from, to)
}

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var out string
	a, _, err := setup("export", args, stderr, func(cf *commonFlags) {
		cf.fs.StringVar(&out, "out", "", "CSV output path (empty = stdout)")
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	results, err := a.analyzeAll(ctx)
	if err != nil {
		return err
	}
	if out == "" {
		return report.CSV(stdout, results)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := report.CSV(f, results); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.Info("csv exported", zap.String("path", out), zap.Int("locations", len(results)))
	return nil
}

func runSnapshot(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var show string
	a, _, err := setup("snapshot", args, stderr, func(cf *commonFlags) {
		cf.fs.StringVar(&show, "show", "", `print a stored snapshot by ID, or "latest" for the dataset's newest`)
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	pool, err := postgres.NewPool(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	repo := postgres.NewSnapshotRepository(pool.DB())

	if show != "" {
		var snap *postgres.Snapshot
		if show == "latest" {
			snap, err = repo.Latest(ctx, a.cfg.Data.Dataset)
		} else {
			id, perr := uuid.Parse(show)
			if perr != nil {
				return fmt.Errorf("invalid snapshot id %q: %w", show, perr)
			}
			snap, err = repo.Get(ctx, id)
		}
		if err != nil {
			return err
		}
		return writeSnapshot(stdout, snap)
	}

	results, err := a.analyzeAll(ctx)
	if err != nil {
		return err
	}
	snap := postgres.NewSnapshot(a.cfg.Data.Dataset, a.cfg.Calculator.Multiplier, a.cfg.Calculator.ReferenceMaxRate, results)
	if err := repo.Save(ctx, snap); err != nil {
		return err
	}
	a.logger.Info("snapshot saved", zap.String("id", snap.ID.String()), zap.Int("rows", len(snap.Rows)))
	fmt.Fprintln(stdout, snap.ID)
	return nil
}

func writeSnapshot(w io.Writer, s *postgres.Snapshot) error {
	fmt.Fprintf(w, "Snapshot %s of %s at %s (multiplier %v, reference rate %d)\n",
		s.ID, s.Dataset, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Multiplier, s.ReferenceMax)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Location\tVersion\tMethod\tExpected EXP\tRate\tEfficiency")
	for _, r := range s.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%.2f\n",
			r.LocationName, r.Version, r.Method, r.ExpectedExp, r.EncounterRate, r.Efficiency)
	}
	return tw.Flush()
}
