package report

import (
	"io"
	"strings"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
)

// Rankings writes the topN locations of every method by efficiency score.
// Methods no location offers are omitted.
//
// Postcondition: Returns the first write error, if any.
func Rankings(w io.Writer, results []analysis.LocationResult, topN int, opts Options) error {
	p := newPalette(opts.Color)
	ew := &errWriter{w: w}

	ew.println("")
	ew.println(strings.Repeat("=", ruleWidth))
	ew.println(p.title.Sprint("TOP GRINDING LOCATIONS BY EFFICIENCY SCORE"))
	ew.printf("Efficiency = Expected EXP x (Encounter Rate / %d)\n", opts.refMax())
	ew.println(strings.Repeat("=", ruleWidth))

	for _, m := range encounter.Methods {
		rows := analysis.Rank(results, m, topN)
		if len(rows) == 0 {
			continue
		}
		ew.println("")
		ew.println(p.version.Sprint(plainTitle(m)))
		ew.println(strings.Repeat("-", 60))
		writeRankRows(ew, rows, false)
	}
	return ew.err
}

// Overall writes the topN method/location pairs across every method.
//
// Postcondition: Returns the first write error, if any.
func Overall(w io.Writer, results []analysis.LocationResult, topN int, opts Options) error {
	p := newPalette(opts.Color)
	ew := &errWriter{w: w}
	ew.println(p.title.Sprintf("Top %d locations by efficiency:", topN))
	writeRankRows(ew, analysis.RankAll(results, topN), true)
	return ew.err
}

func writeRankRows(ew *errWriter, rows []analysis.Ranked, withMethod bool) {
	if withMethod {
		ew.printf("  %2s  %-25s %-18s %-8s %7s %4s %8s\n", "#", "Location", "Method", "Ver", "EXP", "Rate", "Eff")
	} else {
		ew.printf("  %2s  %-30s %-8s %7s %4s %8s\n", "#", "Location", "Ver", "EXP", "Rate", "Eff")
	}
	for i, r := range rows {
		if withMethod {
			ew.printf("  %2d. %-25s %-18s %-8s %7.1f %4d %8.1f\n", i+1, r.Location.Name, plainTitle(r.Method),
				r.Location.Version, r.Expectation.ExpectedExp, r.EncounterRate, r.Efficiency)
			continue
		}
		ew.printf("  %2d. %-30s %-8s %7.1f %4d %8.1f\n", i+1, r.Location.Name,
			r.Location.Version, r.Expectation.ExpectedExp, r.EncounterRate, r.Efficiency)
	}
}
