package encounter

import (
	"fmt"
	"slices"
)

// Kind is the category of encounter data attached to a location.
type Kind int

const (
	Land Kind = iota
	Water
	RockSmash
	Fishing
)

// Kinds lists every encounter kind in report order.
var Kinds = []Kind{Land, Water, RockSmash, Fishing}

// String returns the dataset key of k.
func (k Kind) String() string {
	switch k {
	case Land:
		return "land"
	case Water:
		return "water"
	case RockSmash:
		return "rock_smash"
	case Fishing:
		return "fishing"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a dataset key to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown encounter kind %q", s)
}

// Rod is a fishing tier.
type Rod int

const (
	OldRod Rod = iota
	GoodRod
	SuperRod
)

// Rods lists every fishing tier from weakest to strongest.
var Rods = []Rod{OldRod, GoodRod, SuperRod}

func (r Rod) String() string {
	switch r {
	case OldRod:
		return "old_rod"
	case GoodRod:
		return "good_rod"
	case SuperRod:
		return "super_rod"
	default:
		return fmt.Sprintf("rod(%d)", int(r))
	}
}

// ParseRod converts a tier name such as "good_rod" to a Rod.
func ParseRod(s string) (Rod, error) {
	for _, r := range Rods {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown fishing rod %q", s)
}

// Method is one independently computed encounter method: a non-fishing kind, or
// one fishing tier.
type Method int

const (
	MethodLand Method = iota
	MethodWater
	MethodRockSmash
	MethodOldRod
	MethodGoodRod
	MethodSuperRod
)

// Methods lists every method in report order.
var Methods = []Method{MethodLand, MethodWater, MethodRockSmash, MethodOldRod, MethodGoodRod, MethodSuperRod}

// String returns the report key of m.
func (m Method) String() string {
	switch m {
	case MethodLand:
		return "grass"
	case MethodWater:
		return "surfing"
	case MethodRockSmash:
		return "rock_smash"
	case MethodOldRod:
		return "fishing_old_rod"
	case MethodGoodRod:
		return "fishing_good_rod"
	case MethodSuperRod:
		return "fishing_super_rod"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Title returns the human-readable name of m.
func (m Method) Title() string {
	switch m {
	case MethodLand:
		return "Grass"
	case MethodWater:
		return "Surfing"
	case MethodRockSmash:
		return "Rock Smash"
	case MethodOldRod:
		return "Fishing: Old Rod"
	case MethodGoodRod:
		return "Fishing: Good Rod"
	case MethodSuperRod:
		return "Fishing: Super Rod"
	default:
		return m.String()
	}
}

// ParseMethod converts a report key such as "surfing" to a Method.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown encounter method %q", s)
}

// RodMethod returns the Method computed for fishing tier r.
func RodMethod(r Rod) Method {
	return MethodOldRod + Method(r)
}

// KindMethod returns the Method computed for a non-fishing kind.
//
// Precondition: k != Fishing.
func KindMethod(k Kind) Method {
	if k == Fishing {
		panic("encounter.KindMethod: precondition violated: fishing has one method per rod")
	}
	return Method(k)
}

// TierSelector maps each fishing tier to the slot indices it draws from. Tiers
// share one slot table; each tier is its own probability space.
type TierSelector map[Rod][]int

// Validate checks that every tier is non-empty, indices are non-negative and
// no index belongs to two tiers.
func (ts TierSelector) Validate() error {
	owner := make(map[int]Rod)
	for _, r := range Rods {
		idx, ok := ts[r]
		if !ok {
			continue
		}
		if len(idx) == 0 {
			return fmt.Errorf("fishing tier %s selects no slots", r)
		}
		for _, i := range idx {
			if i < 0 {
				return fmt.Errorf("fishing tier %s: negative slot index %d", r, i)
			}
			if prev, dup := owner[i]; dup {
				return fmt.Errorf("fishing tier %s: slot index %d already belongs to %s", r, i, prev)
			}
			owner[i] = r
		}
	}
	return nil
}

// Covers reports whether a slot table of length n contains every index of tier r.
func (ts TierSelector) Covers(r Rod, n int) bool {
	idx, ok := ts[r]
	if !ok || len(idx) == 0 {
		return false
	}
	return slices.Max(idx) < n
}

// RateSet holds the relative-weight table of every encounter kind.
type RateSet struct {
	Land      []int
	Water     []int
	RockSmash []int
	Fishing   []int
	Tiers     TierSelector
}

// DefaultRates returns the built-in weight tables.
//
// Postcondition: Every table is non-empty and Tiers passes Validate.
func DefaultRates() RateSet {
	return RateSet{
		Land:      []int{20, 20, 10, 10, 10, 10, 5, 5, 4, 4, 1, 1},
		Water:     []int{60, 30, 5, 4, 1},
		RockSmash: []int{60, 30, 5, 4, 1},
		Fishing:   []int{70, 30, 60, 20, 20, 40, 40, 15, 4, 1},
		Tiers: TierSelector{
			OldRod:   {0, 1},
			GoodRod:  {2, 3, 4},
			SuperRod: {5, 6, 7, 8, 9},
		},
	}
}

// WithDefaults returns a copy of rs with every missing table filled from
// DefaultRates.
func (rs RateSet) WithDefaults() RateSet {
	def := DefaultRates()
	if len(rs.Land) == 0 {
		rs.Land = def.Land
	}
	if len(rs.Water) == 0 {
		rs.Water = def.Water
	}
	if len(rs.RockSmash) == 0 {
		rs.RockSmash = def.RockSmash
	}
	if len(rs.Fishing) == 0 {
		rs.Fishing = def.Fishing
	}
	if len(rs.Tiers) == 0 {
		rs.Tiers = def.Tiers
	}
	return rs
}

// For returns the weight table of kind k.
func (rs RateSet) For(k Kind) []int {
	switch k {
	case Land:
		return rs.Land
	case Water:
		return rs.Water
	case RockSmash:
		return rs.RockSmash
	case Fishing:
		return rs.Fishing
	}
	return nil
}

// Validate checks every table holds positive weights and the tiers are disjoint.
func (rs RateSet) Validate() error {
	for _, k := range Kinds {
		for i, w := range rs.For(k) {
			if w <= 0 {
				return fmt.Errorf("%w: %s rate[%d] = %d", ErrNonPositiveWeight, k, i, w)
			}
		}
	}
	if err := rs.Tiers.Validate(); err != nil {
		return err
	}
	for r, idx := range rs.Tiers {
		if len(idx) == 0 || len(rs.Fishing) == 0 {
			continue
		}
		if slices.Max(idx) >= len(rs.Fishing) {
			return fmt.Errorf("%w: %s index %d beyond fishing rate table of %d", ErrTierOutOfRange, r, slices.Max(idx), len(rs.Fishing))
		}
	}
	return nil
}

// MethodWeights returns the first n entries of rates, the weights of a slot table
// holding n slots.
//
// Postcondition: Returns a slice of length n or an error wrapping ErrWeightMismatch.
func MethodWeights(rates []int, n int) ([]int, error) {
	if len(rates) < n {
		return nil, fmt.Errorf("%w: %d slots but only %d rates", ErrWeightMismatch, n, len(rates))
	}
	return rates[:n], nil
}
