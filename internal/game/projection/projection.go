// Package projection converts an EXP deficit into the number of battles needed
// to cover it.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/expcalc/internal/game/growth"
	"github.com/cory-johannsen/expcalc/internal/game/species"
)

var (
	// ErrDivisionUndefined is returned when the per-battle EXP is zero, negative,
	// infinite or NaN, so no finite battle count exists.
	ErrDivisionUndefined = errors.New("projection: per-battle EXP must be positive and finite")
	// ErrBattleCountOverflow is returned when the battle count does not fit in an int.
	ErrBattleCountOverflow = errors.New("projection: battle count overflows")
	// ErrNegativeExpNeeded is returned when the deficit passed in is negative.
	ErrNegativeExpNeeded = errors.New("projection: EXP needed must be >= 0")
	// ErrInvalidLevel is returned when a level lies outside [1, growth.MaxLevel].
	ErrInvalidLevel = errors.New("projection: level out of range")
)

// BattlesNeeded returns the smallest battle count whose total EXP reaches
// expNeeded at perBattle EXP per battle.
//
// Precondition: expNeeded >= 0; perBattle > 0 and finite.
// Postcondition: Returns ceil(expNeeded / perBattle), or an error wrapping
// ErrDivisionUndefined, ErrNegativeExpNeeded or ErrBattleCountOverflow. A
// returned count is never negative.
func BattlesNeeded(expNeeded int, perBattle float64) (int, error) {
	if expNeeded < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNegativeExpNeeded, expNeeded)
	}
	if math.IsNaN(perBattle) || math.IsInf(perBattle, 0) || perBattle <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrDivisionUndefined, perBattle)
	}
	if expNeeded == 0 {
		return 0, nil
	}
	battles := math.Ceil(float64(expNeeded) / perBattle)
	// float64(math.MaxInt) rounds up to 2^63, itself out of range.
	if battles >= float64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d EXP at %v per battle", ErrBattleCountOverflow, expNeeded, perBattle)
	}
	return int(battles), nil
}

// ExpNeeded returns the EXP still required to reach targetLevel from a current
// cumulative total.
//
// Postcondition: Never negative; a current total already past the target yields 0.
func ExpNeeded(c growth.Curve, currentExp, targetLevel int) int {
	return max(0, growth.CumulativeExp(c, targetLevel)-currentExp)
}

// Plan is the battle projection for one species.
type Plan struct {
	Species      string
	Known        bool
	Curve        growth.Curve
	CurrentLevel int
	CurrentExp   int
	TargetLevel  int
	TargetExp    int
	ExpNeeded    int
	PerBattle    float64
	Battles      int
	// ProjectedLevel is the level reached after Battles battles, capped at
	// growth.MaxLevel.
	ProjectedLevel int
}

// NewPlan builds the projection for a species training from currentLevel to
// targetLevel at perBattle EXP per battle. A negative currentExp means "exactly
// at currentLevel" and is replaced by that level's cumulative total. Unknown
// species use the default growth curve.
//
// Precondition: table must be non-nil; levels within [1, growth.MaxLevel].
// Postcondition: Returns a complete Plan, or an error wrapping ErrInvalidLevel,
// ErrDivisionUndefined, ErrNegativeExpNeeded or ErrBattleCountOverflow.
func NewPlan(table *species.Table, speciesID string, currentLevel, currentExp, targetLevel int, perBattle float64) (Plan, error) {
	for _, lvl := range []int{currentLevel, targetLevel} {
		if lvl < 1 || lvl > growth.MaxLevel {
			return Plan{}, fmt.Errorf("%w: %d", ErrInvalidLevel, lvl)
		}
	}
	rec, known := table.Resolve(speciesID)
	if currentExp < 0 {
		currentExp = growth.CumulativeExp(rec.Curve, currentLevel)
	}
	p := Plan{
		Species:      rec.ID,
		Known:        known,
		Curve:        rec.Curve,
		CurrentLevel: currentLevel,
		CurrentExp:   currentExp,
		TargetLevel:  targetLevel,
		TargetExp:    growth.CumulativeExp(rec.Curve, targetLevel),
		PerBattle:    perBattle,
	}
	p.ExpNeeded = ExpNeeded(rec.Curve, currentExp, targetLevel)
	battles, err := BattlesNeeded(p.ExpNeeded, perBattle)
	if err != nil {
		return Plan{}, err
	}
	p.Battles = battles
	p.ProjectedLevel = projectedLevel(rec.Curve, currentExp, battles, perBattle)
	return p, nil
}

func projectedLevel(c growth.Curve, currentExp, battles int, perBattle float64) int {
	ceiling := float64(growth.CumulativeExp(c, growth.MaxLevel))
	total := math.Min(float64(currentExp)+float64(battles)*perBattle, ceiling)
	return growth.LevelForExp(c, int(total))
}
