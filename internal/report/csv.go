package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cory-johannsen/expcalc/internal/analysis"
)

// CSVHeader is the first record of every CSV export.
var CSVHeader = []string{"Location", "Version", "Encounter Type", "Expected EXP", "Encounter Rate", "Efficiency Score"}

// CSV writes one record per evaluated method, locations ordered by ID.
//
// Postcondition: Returns the first write error, if any.
func CSV(w io.Writer, results []analysis.LocationResult) error {
	sorted := make([]analysis.LocationResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Location.ID < sorted[j].Location.ID
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, lr := range sorted {
		for _, mr := range lr.Methods {
			record := []string{
				lr.Location.Name,
				string(lr.Location.Version),
				plainTitle(mr.Method),
				strconv.FormatFloat(mr.Expectation.ExpectedExp, 'f', 2, 64),
				strconv.Itoa(mr.EncounterRate),
				strconv.FormatFloat(mr.Efficiency, 'f', 2, 64),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing CSV record for %s: %w", lr.Location.ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
