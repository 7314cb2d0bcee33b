// Package growth evaluates the six experience growth curves that map a level to
// the cumulative EXP required to reach it.
package growth

import (
	"fmt"
	"strings"
)

// MaxLevel is the highest attainable level.
const MaxLevel = 100

// Curve identifies one of the six growth-curve families.
type Curve int

const (
	MediumFast Curve = iota
	Erratic
	Fluctuating
	MediumSlow
	Fast
	Slow
)

// DefaultCurve is used for species absent from the reference tables.
const DefaultCurve = MediumFast

// All lists every curve in declaration order.
var All = []Curve{MediumFast, Erratic, Fluctuating, MediumSlow, Fast, Slow}

// String returns the canonical snake_case name of c.
func (c Curve) String() string {
	switch c {
	case MediumFast:
		return "medium_fast"
	case Erratic:
		return "erratic"
	case Fluctuating:
		return "fluctuating"
	case MediumSlow:
		return "medium_slow"
	case Fast:
		return "fast"
	case Slow:
		return "slow"
	default:
		return fmt.Sprintf("curve(%d)", int(c))
	}
}

// Valid reports whether c is one of the six known curves.
func (c Curve) Valid() bool {
	return c >= MediumFast && c <= Slow
}

// ParseCurve converts a curve name to a Curve. Hyphens, spaces and case are ignored,
// so "Medium Fast", "medium-fast" and "MEDIUM_FAST" are equivalent.
//
// Postcondition: Returns a valid Curve or a non-nil error.
func ParseCurve(name string) (Curve, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, c := range All {
		if c.String() == norm {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown growth curve %q", name)
}

// MarshalYAML encodes the curve by name.
func (c Curve) MarshalYAML() (interface{}, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid growth curve %d", int(c))
	}
	return c.String(), nil
}

// UnmarshalYAML decodes a curve name.
func (c *Curve) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseCurve(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CumulativeExp returns the total EXP required to reach level n on curve c.
// Every division truncates toward zero.
//
// Precondition: c must be a valid Curve.
// Postcondition: Returns 0 for n <= 1; result is non-decreasing in n for n >= 1.
func CumulativeExp(c Curve, n int) int {
	if n <= 1 {
		return 0
	}
	cube := n * n * n
	switch c {
	case MediumFast:
		return cube
	case Fast:
		return 4 * cube / 5
	case Slow:
		return 5 * cube / 4
	case MediumSlow:
		return 6*cube/5 - 15*n*n + 100*n - 140
	case Erratic:
		return erratic(n, cube)
	case Fluctuating:
		return fluctuating(n, cube)
	}
	panic(fmt.Sprintf("growth.CumulativeExp: precondition violated: invalid curve %d", int(c)))
}

func erratic(n, cube int) int {
	switch {
	case n <= 50:
		return cube * (100 - n) / 50
	case n <= 68:
		return cube * (150 - n) / 100
	case n <= 98:
		return cube * ((1911 - 10*n) / 3) / 500
	default:
		return cube * (160 - n) / 100
	}
}

func fluctuating(n, cube int) int {
	switch {
	case n <= 15:
		return cube * ((n+1)/3 + 24) / 50
	case n <= 36:
		return cube * (n + 14) / 50
	default:
		return cube * (n/2 + 32) / 50
	}
}

// ExpToNextLevel returns the EXP between level and level+1 on curve c.
//
// Postcondition: Returns 0 when level >= MaxLevel.
func ExpToNextLevel(c Curve, level int) int {
	if level >= MaxLevel {
		return 0
	}
	return CumulativeExp(c, level+1) - CumulativeExp(c, level)
}

// LevelForExp returns the highest level in [1, MaxLevel] whose cumulative
// requirement on curve c does not exceed exp.
//
// Precondition: c must be a valid Curve.
// Postcondition: Returns a level in [1, MaxLevel].
func LevelForExp(c Curve, exp int) int {
	lo, hi := 1, MaxLevel
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if CumulativeExp(c, mid) <= exp {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
