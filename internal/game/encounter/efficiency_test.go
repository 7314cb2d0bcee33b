package encounter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/expcalc/internal/game/encounter"
)

func TestEfficiency(t *testing.T) {
	assert.InDelta(t, 100.0, encounter.Efficiency(100, 16, 16), 1e-12)
	assert.InDelta(t, 25.0, encounter.Efficiency(100, 4, 16), 1e-12)
	assert.InDelta(t, 50.0, encounter.Efficiency(100, 10, 20), 1e-12)
}

func TestEfficiency_NonPositiveRateIsZero(t *testing.T) {
	assert.Equal(t, 0.0, encounter.Efficiency(100, 0, 16))
	assert.Equal(t, 0.0, encounter.Efficiency(100, -3, 16))
	assert.Equal(t, 0.0, encounter.Efficiency(100, 8, 0))
}

func TestProperty_Efficiency_MonotoneInRate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		exp := rapid.Float64Range(0, 5000).Draw(rt, "exp")
		rate := rapid.IntRange(0, 31).Draw(rt, "rate")
		lo := encounter.Efficiency(exp, rate, encounter.DefaultReferenceMaxRate)
		hi := encounter.Efficiency(exp, rate+1, encounter.DefaultReferenceMaxRate)
		if hi < lo {
			rt.Fatalf("efficiency decreased from %f to %f", lo, hi)
		}
	})
}
