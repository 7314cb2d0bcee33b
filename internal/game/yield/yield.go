// Package yield computes the EXP awarded for defeating a single wild creature.
package yield

// PerBattle returns the EXP awarded for defeating one creature with the given base
// EXP yield at the given level. When multiplier is set the 1.5x bonus is applied
// as a multiply by 3 followed by a truncating divide by 2.
//
// Every step is integer arithmetic truncating toward zero, in this order:
//
//	raw  = baseExp * level
//	step = raw / 7
//	step = (step * 3) / 2   // multiplier only
//
// Precondition: baseExp >= 0; level >= 1.
// Postcondition: Returns a non-negative EXP amount.
func PerBattle(baseExp, level int, multiplier bool) int {
	step := baseExp * level / 7
	if multiplier {
		step = step * 3 / 2
	}
	return step
}

// Range returns the sum of PerBattle over every level in [minLevel, maxLevel]
// together with the number of levels summed.
//
// Precondition: 1 <= minLevel <= maxLevel.
// Postcondition: count == maxLevel - minLevel + 1.
func Range(baseExp, minLevel, maxLevel int, multiplier bool) (sum, count int) {
	for level := minLevel; level <= maxLevel; level++ {
		sum += PerBattle(baseExp, level, multiplier)
	}
	return sum, maxLevel - minLevel + 1
}
