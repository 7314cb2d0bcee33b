package report

import (
	"io"
	"strings"

	"github.com/cory-johannsen/expcalc/internal/analysis"
)

// Search writes the methods of every matched location.
//
// Postcondition: Returns the first write error, if any.
func Search(w io.Writer, matches []analysis.LocationResult, opts Options) error {
	p := newPalette(opts.Color)
	ew := &errWriter{w: w}
	if len(matches) == 0 {
		ew.println("No locations found.")
		return ew.err
	}
	ew.printf("Found %d location(s):\n", len(matches))
	for _, lr := range matches {
		ew.println("")
		ew.printf("%s (%s)\n", p.location.Sprint(lr.Location.Name), lr.Location.Version)
		ew.println(strings.Repeat("-", versionWidth))
		if len(lr.Methods) == 0 {
			ew.println("  no wild encounters")
			continue
		}
		for _, mr := range lr.Methods {
			ew.printf("  %-25s | EXP: %7.1f | Rate: %2d | Eff: %7.1f\n",
				plainTitle(mr.Method), mr.Expectation.ExpectedExp, mr.EncounterRate, mr.Efficiency)
		}
	}
	return ew.err
}
