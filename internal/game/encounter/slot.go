// Package encounter computes the expected EXP of a wild-encounter method from
// its weighted slot table.
package encounter

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/expcalc/internal/game/growth"
)

var (
	// ErrEmptySlotSet is returned when a method has no slots. Callers skip such
	// methods rather than compute them.
	ErrEmptySlotSet = errors.New("encounter: empty slot set")
	// ErrMalformedLevelRange is returned when a slot's MinLevel exceeds its MaxLevel
	// or either bound lies outside [1, growth.MaxLevel].
	ErrMalformedLevelRange = errors.New("encounter: malformed level range")
	// ErrWeightMismatch is returned when the weight table does not line up with
	// the slot table.
	ErrWeightMismatch = errors.New("encounter: weight table does not match slots")
	// ErrNonPositiveWeight is returned when any selection weight is <= 0.
	ErrNonPositiveWeight = errors.New("encounter: weights must be positive")
	// ErrTierOutOfRange is returned when a tier selects an index beyond the slot table.
	ErrTierOutOfRange = errors.New("encounter: tier index out of range")
)

// Slot is one weighted entry of an encounter table.
type Slot struct {
	Species  string `yaml:"species"`
	MinLevel int    `yaml:"min_level"`
	MaxLevel int    `yaml:"max_level"`
}

// Validate checks the slot's level range.
//
// Postcondition: Returns nil iff 1 <= MinLevel <= MaxLevel <= growth.MaxLevel;
// otherwise the error wraps ErrMalformedLevelRange.
func (s Slot) Validate() error {
	if s.MinLevel < 1 {
		return fmt.Errorf("%w: %s min_level must be >= 1, got %d", ErrMalformedLevelRange, s.Species, s.MinLevel)
	}
	if s.MinLevel > s.MaxLevel {
		return fmt.Errorf("%w: %s min_level %d > max_level %d", ErrMalformedLevelRange, s.Species, s.MinLevel, s.MaxLevel)
	}
	if s.MaxLevel > growth.MaxLevel {
		return fmt.Errorf("%w: %s max_level must be <= %d, got %d", ErrMalformedLevelRange, s.Species, growth.MaxLevel, s.MaxLevel)
	}
	return nil
}

// Levels returns the number of distinct levels the slot can produce.
//
// Precondition: s must have passed Validate.
func (s Slot) Levels() int {
	return s.MaxLevel - s.MinLevel + 1
}
