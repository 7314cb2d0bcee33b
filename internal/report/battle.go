package report

import (
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/expcalc/internal/game/growth"
	"github.com/cory-johannsen/expcalc/internal/game/projection"
	"github.com/cory-johannsen/expcalc/internal/game/species"
)

// printer formats integers with thousands separators.
var printer = message.NewPrinter(language.English)

// Grind names where a battle plan's per-battle EXP comes from.
type Grind struct {
	Location string
	Method   string
}

// BattlePlan writes the projection of plan. An empty grind location omits the
// location line.
//
// Postcondition: Returns the first write error, if any.
func BattlePlan(w io.Writer, plan projection.Plan, grind Grind, opts Options) error {
	p := newPalette(opts.Color)
	ew := &errWriter{w: w}

	ew.println(strings.Repeat("=", 50))
	ew.println(p.title.Sprint("RESULTS"))
	ew.println(strings.Repeat("=", 50))
	if !plan.Known {
		ew.println(p.warning.Sprintf("Unknown species %s, using %s growth", plan.Species, plan.Curve))
	}
	ew.printf("Species: %s (%s growth)\n", species.DisplayName(plan.Species), plan.Curve)
	ew.println(printer.Sprintf("Current: Level %d (%d EXP)", plan.CurrentLevel, plan.CurrentExp))
	ew.println(printer.Sprintf("Target:  Level %d (%d EXP)", plan.TargetLevel, plan.TargetExp))
	ew.println(printer.Sprintf("EXP Needed: %d", plan.ExpNeeded))
	ew.println("")
	if grind.Location != "" {
		ew.printf("Location: %s (%s)\n", grind.Location, grind.Method)
	}
	ew.printf("Expected EXP/battle: %.1f\n", plan.PerBattle)
	ew.printf("Multiplier: %s\n", yesNo(opts.Multiplier))
	ew.println("")
	ew.println(p.emphasis.Sprint(printer.Sprintf(">>> Estimated battles needed: %d <<<", plan.Battles)))
	ew.printf("Projected level afterwards: %d\n", plan.ProjectedLevel)
	return ew.err
}

// Curve writes the cumulative EXP table of c for levels from..to inclusive.
//
// Precondition: 1 <= from <= to <= growth.MaxLevel.
// Postcondition: Returns the first write error, if any.
func Curve(w io.Writer, c growth.Curve, from, to int) error {
	ew := &errWriter{w: w}
	ew.printf("Growth curve: %s\n", c)
	ew.printf("%5s  %12s  %10s\n", "Level", "Total EXP", "To next")
	for lvl := from; lvl <= to; lvl++ {
		ew.println(printer.Sprintf("%5d  %12d  %10d", lvl, growth.CumulativeExp(c, lvl), growth.ExpToNextLevel(c, lvl)))
	}
	return ew.err
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
