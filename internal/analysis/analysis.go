// Package analysis evaluates every encounter method of every location in a
// dataset and ranks the results by efficiency.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/location"
)

// MethodResult is the evaluation of one encounter method at one location.
type MethodResult struct {
	Method        encounter.Method
	Expectation   encounter.Result
	EncounterRate int
	Efficiency    float64
}

// LocationResult holds every evaluated method of a location in Methods order.
// Methods without slots are absent.
type LocationResult struct {
	Location *location.Location
	Methods  []MethodResult
}

// Method returns the result for m.
func (lr LocationResult) Method(m encounter.Method) (MethodResult, bool) {
	for _, mr := range lr.Methods {
		if mr.Method == m {
			return mr, true
		}
	}
	return MethodResult{}, false
}

// DurationObserver receives the wall time of each completed analysis.
type DurationObserver interface {
	ObserveAnalysis(d time.Duration)
}

// Analyzer evaluates datasets with a shared Calculator.
type Analyzer struct {
	calc         *encounter.Calculator
	logger       *zap.Logger
	workers      int
	referenceMax int
	durations    DurationObserver
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the analyzer's logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithWorkers bounds the number of locations evaluated concurrently.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// WithReferenceMaxRate sets the trigger rate used by the efficiency score.
func WithReferenceMaxRate(n int) Option {
	return func(a *Analyzer) { a.referenceMax = n }
}

// WithDurationObserver reports each analysis duration to obs.
func WithDurationObserver(obs DurationObserver) Option {
	return func(a *Analyzer) { a.durations = obs }
}

// New creates an Analyzer.
//
// Precondition: calc must be non-nil.
// Postcondition: workers defaults to GOMAXPROCS and the reference rate to
// encounter.DefaultReferenceMaxRate.
func New(calc *encounter.Calculator, opts ...Option) *Analyzer {
	a := &Analyzer{
		calc:         calc,
		logger:       zap.NewNop(),
		workers:      runtime.GOMAXPROCS(0),
		referenceMax: encounter.DefaultReferenceMaxRate,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = 1
	}
	return a
}

// Analyze evaluates every location of ds. Locations are processed concurrently;
// the returned slice is sorted by name, then version, then ID.
//
// Precondition: ds must have passed Validate.
// Postcondition: Returns one LocationResult per location, or the first error.
// Cancelling ctx stops outstanding work and returns ctx.Err().
func (a *Analyzer) Analyze(ctx context.Context, ds *location.Dataset, multiplier bool) ([]LocationResult, error) {
	start := time.Now()
	results := make([]LocationResult, len(ds.Locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, loc := range ds.Locations {
		i, loc := i, loc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lr, err := a.AnalyzeLocation(ds.Rates, loc, multiplier)
			if err != nil {
				return err
			}
			results[i] = lr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return lessLocation(results[i].Location, results[j].Location)
	})

	elapsed := time.Since(start)
	if a.durations != nil {
		a.durations.ObserveAnalysis(elapsed)
	}
	a.logger.Info("analysis complete",
		zap.Int("locations", len(results)),
		zap.Bool("multiplier", multiplier),
		zap.Duration("elapsed", elapsed),
	)
	return results, nil
}

// AnalyzeLocation evaluates the land, water and rock smash tables of loc plus
// each fishing tier whose indices fit inside its fishing table.
//
// Postcondition: Returns a LocationResult, or an error naming the location.
func (a *Analyzer) AnalyzeLocation(rates encounter.RateSet, loc *location.Location, multiplier bool) (LocationResult, error) {
	lr := LocationResult{Location: loc}
	for _, k := range []encounter.Kind{encounter.Land, encounter.Water, encounter.RockSmash} {
		table, ok := loc.Method(k)
		if !ok {
			continue
		}
		weights, err := encounter.MethodWeights(rates.For(k), len(table.Slots))
		if err != nil {
			return LocationResult{}, fmt.Errorf("location %q %s: %w", loc.ID, k, err)
		}
		res, err := a.calc.MethodExpectation(table.Slots, weights, multiplier)
		if errors.Is(err, encounter.ErrEmptySlotSet) {
			continue
		}
		if err != nil {
			return LocationResult{}, fmt.Errorf("location %q %s: %w", loc.ID, k, err)
		}
		lr.Methods = append(lr.Methods, a.methodResult(encounter.KindMethod(k), res, table.EncounterRate))
	}

	table, ok := loc.Method(encounter.Fishing)
	if !ok {
		return lr, nil
	}
	for _, rod := range encounter.Rods {
		indices, declared := rates.Tiers[rod]
		if !declared {
			continue
		}
		if !rates.Tiers.Covers(rod, len(table.Slots)) {
			a.logger.Debug("fishing tier not covered by slot table",
				zap.String("location", loc.ID),
				zap.Stringer("rod", rod),
				zap.Int("slots", len(table.Slots)),
			)
			continue
		}
		res, err := a.calc.TierExpectation(table.Slots, rates.Fishing, indices, multiplier)
		if err != nil {
			return LocationResult{}, fmt.Errorf("location %q %s: %w", loc.ID, rod, err)
		}
		lr.Methods = append(lr.Methods, a.methodResult(encounter.RodMethod(rod), res, table.EncounterRate))
	}
	return lr, nil
}

func (a *Analyzer) methodResult(m encounter.Method, res encounter.Result, rate int) MethodResult {
	return MethodResult{
		Method:        m,
		Expectation:   res,
		EncounterRate: rate,
		Efficiency:    encounter.Efficiency(res.ExpectedExp, rate, a.referenceMax),
	}
}

func lessLocation(a, b *location.Location) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Version != b.Version {
		return versionIndex(a.Version) < versionIndex(b.Version)
	}
	return a.ID < b.ID
}

func versionIndex(v location.Version) int {
	for i, known := range location.Versions {
		if v == known {
			return i
		}
	}
	return len(location.Versions)
}
