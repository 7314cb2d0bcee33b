package encounter

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/cory-johannsen/expcalc/internal/game/species"
	"github.com/cory-johannsen/expcalc/internal/game/yield"
)

// DefaultCacheSize is the default number of memoised slot means.
const DefaultCacheSize = 4096

// Observer receives notifications about computations. Implementations MUST be
// safe for concurrent use.
type Observer interface {
	// ExpectationComputed is called once per successful method computation.
	ExpectationComputed(slots int)
	// UnknownSpecies is called whenever a default record is substituted.
	UnknownSpecies(id string)
}

type nopObserver struct{}

func (nopObserver) ExpectationComputed(int) {}
func (nopObserver) UnknownSpecies(string)   {}

// SlotBreakdown is one row of a Result's per-slot detail.
type SlotBreakdown struct {
	// SlotIndex is the position within the evaluated slot sequence.
	SlotIndex int
	// SourceIndex is the position within the underlying slot table; it differs
	// from SlotIndex only for fishing tiers.
	SourceIndex     int
	Species         string
	MinLevel        int
	MaxLevel        int
	Probability     float64
	SlotExpectedExp float64
	Contribution    float64
}

// Warning describes a recoverable problem met while computing a Result.
type Warning struct {
	SlotIndex int
	Species   string
}

// String returns a human-readable description of w.
func (w Warning) String() string {
	return fmt.Sprintf("slot %d: unknown species %s, using default base EXP %d",
		w.SlotIndex, w.Species, species.DefaultBaseExp)
}

// Result is the expected EXP of one encounter method with its full breakdown.
//
// Invariant: the Probability fields sum to 1 and the Contribution fields sum to
// ExpectedExp, both within floating-point tolerance.
type Result struct {
	ExpectedExp float64
	Breakdown   []SlotBreakdown
	Warnings    []Warning
}

type slotKey struct {
	baseExp    int
	minLevel   int
	maxLevel   int
	multiplier bool
}

// Calculator computes method expectations against a species table. A Calculator
// holds no per-call configuration and is safe for concurrent use.
type Calculator struct {
	table    *species.Table
	cache    *lru.Cache[slotKey, float64]
	logger   *zap.Logger
	observer Observer
}

// Option configures a Calculator.
type Option func(*calcOptions)

type calcOptions struct {
	logger    *zap.Logger
	observer  Observer
	cacheSize int
}

// WithLogger sets the logger used for unknown-species warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *calcOptions) { o.logger = l }
}

// WithObserver sets the computation observer.
func WithObserver(obs Observer) Option {
	return func(o *calcOptions) { o.observer = obs }
}

// WithCacheSize sets the number of memoised slot means; 0 disables memoisation.
func WithCacheSize(n int) Option {
	return func(o *calcOptions) { o.cacheSize = n }
}

// NewCalculator creates a Calculator resolving species through table.
//
// Precondition: table must be non-nil.
// Postcondition: Returns a ready Calculator or a non-nil error.
func NewCalculator(table *species.Table, opts ...Option) (*Calculator, error) {
	if table == nil {
		return nil, fmt.Errorf("encounter.NewCalculator: species table must not be nil")
	}
	o := calcOptions{
		logger:    zap.NewNop(),
		observer:  nopObserver{},
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Calculator{
		table:    table,
		logger:   o.logger,
		observer: o.observer,
	}
	if o.cacheSize > 0 {
		cache, err := lru.New[slotKey, float64](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating slot cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// SlotMean returns the arithmetic mean of the per-battle EXP over every level of
// the range, each level weighted equally. The mean is not truncated.
//
// Precondition: 1 <= minLevel <= maxLevel; baseExp >= 0.
func (c *Calculator) SlotMean(baseExp, minLevel, maxLevel int, multiplier bool) float64 {
	key := slotKey{baseExp: baseExp, minLevel: minLevel, maxLevel: maxLevel, multiplier: multiplier}
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v
		}
	}
	sum, count := yield.Range(baseExp, minLevel, maxLevel, multiplier)
	mean := float64(sum) / float64(count)
	if c.cache != nil {
		c.cache.Add(key, mean)
	}
	return mean
}

// MethodExpectation computes the expected EXP per encounter of a slot table.
// Weights are normalised to probabilities; unknown species fall back to the
// default base EXP and are reported in Result.Warnings.
//
// Precondition: len(slots) > 0; len(weights) == len(slots); every weight > 0;
// every slot passes Validate.
// Postcondition: Returns a Result satisfying its invariant, or an error wrapping
// ErrEmptySlotSet, ErrWeightMismatch, ErrNonPositiveWeight or ErrMalformedLevelRange.
func (c *Calculator) MethodExpectation(slots []Slot, weights []int, multiplier bool) (Result, error) {
	if len(slots) == 0 {
		return Result{}, ErrEmptySlotSet
	}
	if len(weights) != len(slots) {
		return Result{}, fmt.Errorf("%w: %d slots, %d weights", ErrWeightMismatch, len(slots), len(weights))
	}
	total := 0
	for i, s := range slots {
		if err := s.Validate(); err != nil {
			return Result{}, fmt.Errorf("slot %d: %w", i, err)
		}
		if weights[i] <= 0 {
			return Result{}, fmt.Errorf("%w: slot %d weight %d", ErrNonPositiveWeight, i, weights[i])
		}
		total += weights[i]
	}

	res := Result{Breakdown: make([]SlotBreakdown, 0, len(slots))}
	for i, s := range slots {
		rec, known := c.table.Resolve(s.Species)
		if !known {
			w := Warning{SlotIndex: i, Species: s.Species}
			res.Warnings = append(res.Warnings, w)
			c.observer.UnknownSpecies(s.Species)
			c.logger.Warn("unknown species, using default base exp",
				zap.String("species", s.Species),
				zap.Int("slot", i),
				zap.Int("default_base_exp", species.DefaultBaseExp),
			)
		}
		mean := c.SlotMean(rec.BaseExp, s.MinLevel, s.MaxLevel, multiplier)
		prob := float64(weights[i]) / float64(total)
		contribution := prob * mean
		res.ExpectedExp += contribution
		res.Breakdown = append(res.Breakdown, SlotBreakdown{
			SlotIndex:       i,
			SourceIndex:     i,
			Species:         s.Species,
			MinLevel:        s.MinLevel,
			MaxLevel:        s.MaxLevel,
			Probability:     prob,
			SlotExpectedExp: mean,
			Contribution:    contribution,
		})
	}
	c.observer.ExpectationComputed(len(slots))
	return res, nil
}

// SelectTier returns the slots and weights at the given indices of a shared slot
// table.
//
// Postcondition: Returns slices of len(indices), or an error wrapping
// ErrTierOutOfRange if any index is outside either table.
func SelectTier(slots []Slot, weights []int, indices []int) ([]Slot, []int, error) {
	outSlots := make([]Slot, 0, len(indices))
	outWeights := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(slots) || i >= len(weights) {
			return nil, nil, fmt.Errorf("%w: index %d with %d slots and %d weights", ErrTierOutOfRange, i, len(slots), len(weights))
		}
		outSlots = append(outSlots, slots[i])
		outWeights = append(outWeights, weights[i])
	}
	return outSlots, outWeights, nil
}

// TierExpectation computes the expectation of one fishing tier: the slots at
// indices, renormalised over that subset only. Slots and weights outside indices
// never affect the result.
//
// Precondition: indices must be non-empty and within both tables.
// Postcondition: Breakdown SourceIndex values are the selected table indices.
func (c *Calculator) TierExpectation(slots []Slot, weights []int, indices []int, multiplier bool) (Result, error) {
	tierSlots, tierWeights, err := SelectTier(slots, weights, indices)
	if err != nil {
		return Result{}, err
	}
	res, err := c.MethodExpectation(tierSlots, tierWeights, multiplier)
	if err != nil {
		return Result{}, err
	}
	for i := range res.Breakdown {
		res.Breakdown[i].SourceIndex = indices[i]
	}
	for i := range res.Warnings {
		res.Warnings[i].SlotIndex = indices[res.Warnings[i].SlotIndex]
	}
	return res, nil
}
