// Package report renders analysis results as text reports, efficiency
// rankings, CSV and battle plans.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/game/species"
)

const (
	ruleWidth    = 80
	versionWidth = 40
)

// Options controls text rendering.
type Options struct {
	// Verbose adds a per-slot breakdown under each method.
	Verbose bool
	// Color enables ANSI colour.
	Color bool
	// Multiplier marks the report as computed with the 1.5x bonus.
	Multiplier bool
	// Game labels the report header; empty omits it.
	Game string
	// ReferenceMaxRate is the trigger-rate denominator shown next to rates.
	ReferenceMaxRate int
}

func (o Options) refMax() int {
	if o.ReferenceMaxRate <= 0 {
		return encounter.DefaultReferenceMaxRate
	}
	return o.ReferenceMaxRate
}

// plainTitle is a method's display name without punctuation, e.g. "Fishing Old Rod".
func plainTitle(m encounter.Method) string {
	return strings.Replace(m.Title(), ": ", " ", 1)
}

// Text writes the full location report, grouped by version in Ruby, Sapphire,
// Emerald, Unknown order and sorted by name within each version. Locations
// without any evaluated method are omitted.
//
// Postcondition: Returns the first write error, if any.
func Text(w io.Writer, results []analysis.LocationResult, opts Options) error {
	p := newPalette(opts.Color)
	ew := &errWriter{w: w}

	suffix := ""
	if opts.Multiplier {
		suffix += " (WITH 1.5x MULTIPLIER)"
	}
	if opts.Game != "" {
		suffix += " - " + opts.Game
	}
	ew.println(strings.Repeat("=", ruleWidth))
	ew.println(p.title.Sprint("GEN 3 EXPECTED EXP PER BATTLE BY LOCATION" + suffix))
	ew.println("Integer math: every division truncates")
	ew.println(strings.Repeat("=", ruleWidth))

	byVersion := make(map[location.Version][]analysis.LocationResult)
	for _, lr := range results {
		byVersion[lr.Location.Version] = append(byVersion[lr.Location.Version], lr)
	}
	for _, v := range location.Versions {
		group := byVersion[v]
		if len(group) == 0 {
			continue
		}
		ew.println("")
		ew.println(strings.Repeat("=", versionWidth))
		ew.println(p.version.Sprintf("  %s VERSION", strings.ToUpper(string(v))))
		ew.println(strings.Repeat("=", versionWidth))

		for _, lr := range group {
			if len(lr.Methods) == 0 {
				continue
			}
			ew.println("")
			ew.println(p.location.Sprint(lr.Location.Name))
			ew.println(strings.Repeat("-", len(lr.Location.Name)))
			for _, mr := range lr.Methods {
				ew.printf("  %-25s | EXP: %7.1f | Rate: %2d/%d | Eff: %7.1f\n",
					mr.Method.Title(), mr.Expectation.ExpectedExp, mr.EncounterRate, opts.refMax(), mr.Efficiency)
				if opts.Verbose {
					writeBreakdown(ew, p, mr.Expectation)
				}
			}
		}
	}
	return ew.err
}

func writeBreakdown(ew *errWriter, p palette, res encounter.Result) {
	ew.printf("    %-15s | %-9s | %-6s | %-6s | %-7s\n", "Species", "Lvl", "Prob", "EXP", "Contrib")
	ew.printf("    %s\n", strings.Repeat("-", 55))
	for _, row := range res.Breakdown {
		ew.printf("    %-15s | %-9s | %-6s | %-6s | %-7s\n",
			species.DisplayName(row.Species),
			fmt.Sprintf("%d-%d", row.MinLevel, row.MaxLevel),
			fmt.Sprintf("%.1f%%", row.Probability*100),
			fmt.Sprintf("%.1f", row.SlotExpectedExp),
			fmt.Sprintf("%.2f", row.Contribution),
		)
	}
	for _, warn := range res.Warnings {
		ew.printf("    %s\n", p.warning.Sprint("! "+warn.String()))
	}
	ew.println("")
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(s string) {
	e.printf("%s\n", s)
}
