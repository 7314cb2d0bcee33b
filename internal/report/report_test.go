package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/growth"
	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/game/projection"
	"github.com/cory-johannsen/expcalc/internal/game/species"
	"github.com/cory-johannsen/expcalc/internal/report"
)

const datasetYAML = `
rates:
  land: [20, 20, 10]
locations:
  - id: route101_emerald
    map: MAP_ROUTE101
    version: Emerald
    methods:
      land:
        encounter_rate: 20
        slots:
          - {species: SPECIES_WURMPLE, min_level: 2, max_level: 3}
          - {species: SPECIES_POOCHYENA, min_level: 2, max_level: 3}
          - {species: SPECIES_ZIGZAGOON, min_level: 2, max_level: 3}
  - id: route102_ruby
    map: MAP_ROUTE102
    version: Ruby
    methods:
      land:
        encounter_rate: 20
        slots:
          - {species: SPECIES_POOCHYENA, min_level: 3, max_level: 3}
          - {species: SPECIES_MISSINGNO, min_level: 3, max_level: 3}
      fishing:
        encounter_rate: 30
        slots:
          - {species: SPECIES_MAGIKARP, min_level: 5, max_level: 10}
          - {species: SPECIES_GOLDEEN, min_level: 5, max_level: 10}
  - id: abandoned_ship_emerald
    map: MAP_ABANDONED_SHIP
    version: Emerald
`

func analyze(t *testing.T) []analysis.LocationResult {
	t.Helper()
	ds, err := location.LoadDatasetFromBytes([]byte(datasetYAML))
	require.NoError(t, err)
	calc, err := encounter.NewCalculator(species.Builtin())
	require.NoError(t, err)
	results, err := analysis.New(calc).Analyze(context.Background(), ds, false)
	require.NoError(t, err)
	return results
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestText_GroupsByVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Text(&buf, analyze(t), report.Options{Game: "Emerald"}))
	out := buf.String()

	assert.Contains(t, out, "GEN 3 EXPECTED EXP PER BATTLE BY LOCATION - Emerald")
	rubyAt := strings.Index(out, "RUBY VERSION")
	emeraldAt := strings.Index(out, "EMERALD VERSION")
	require.NotEqual(t, -1, rubyAt)
	require.NotEqual(t, -1, emeraldAt)
	assert.Less(t, rubyAt, emeraldAt)
	assert.NotContains(t, out, "SAPPHIRE VERSION")
	assert.NotContains(t, out, "Abandoned Ship")

	assert.Contains(t, out, "Route 101\n---------\n")
	assert.Contains(t, out, "  Grass                     | EXP:    19.4 | Rate: 20/16 |")
	assert.Contains(t, out, "Fishing: Old Rod")
	assert.NotContains(t, out, "Species")
	assert.NotContains(t, out, "\x1b[")
}

func TestText_VerboseBreakdownAndWarnings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Text(&buf, analyze(t), report.Options{Verbose: true, Multiplier: true}))
	out := buf.String()
	assert.Contains(t, out, "(WITH 1.5x MULTIPLIER)")
	assert.Contains(t, out, "    Species         | Lvl       | Prob   | EXP    | Contrib")
	assert.Contains(t, out, "    WURMPLE         | 2-3       | 40.0%  | 19.0   | 7.60   ")
	assert.Contains(t, out, "! slot 1: unknown species SPECIES_MISSINGNO")
}

func TestText_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Text(&buf, analyze(t), report.Options{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestText_WriteError(t *testing.T) {
	err := report.Text(failingWriter{}, analyze(t), report.Options{})
	assert.EqualError(t, err, "disk full")
}

func TestRankings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Rankings(&buf, analyze(t), 15, report.Options{}))
	out := buf.String()
	assert.Contains(t, out, "TOP GRINDING LOCATIONS BY EFFICIENCY SCORE")
	assert.Contains(t, out, "Efficiency = Expected EXP x (Encounter Rate / 16)")
	assert.Contains(t, out, "\nGrass\n")
	assert.Contains(t, out, "\nFishing Old Rod\n")
	assert.NotContains(t, out, "Surfing")
	assert.NotContains(t, out, "Fishing Super Rod")
	assert.Contains(t, out, "   1. Route 102")
}

func TestOverall(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Overall(&buf, analyze(t), 2, report.Options{}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// title, column header, two rows
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "Fishing Old Rod")
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.CSV(&buf, analyze(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, report.CSVHeader, records[0])
	assert.Equal(t, []string{"Route 101", "Emerald", "Grass", "19.40", "20", "24.25"}, records[1])
	assert.Equal(t, "Route 102", records[2][0])
	assert.Equal(t, "Ruby", records[2][1])
	assert.Equal(t, "Fishing Old Rod", records[3][2])
	assert.Equal(t, "50.25", records[3][3])
}

func TestSearch(t *testing.T) {
	results := analyze(t)

	var buf bytes.Buffer
	require.NoError(t, report.Search(&buf, results[:1], report.Options{}))
	assert.Contains(t, buf.String(), "Found 1 location(s):")
	assert.Contains(t, buf.String(), "Abandoned Ship (Emerald)")
	assert.Contains(t, buf.String(), "no wild encounters")

	buf.Reset()
	require.NoError(t, report.Search(&buf, nil, report.Options{}))
	assert.Equal(t, "No locations found.\n", buf.String())
}

func TestBattlePlan(t *testing.T) {
	plan, err := projection.NewPlan(species.Builtin(), "mudkip", 5, -1, 16, 50)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.BattlePlan(&buf, plan, report.Grind{Location: "Route 101", Method: "Grass"}, report.Options{}))
	out := buf.String()
	assert.Contains(t, out, "Species: MUDKIP (medium_slow growth)")
	assert.Contains(t, out, "Current: Level 5 (135 EXP)")
	assert.Contains(t, out, "Target:  Level 16 (2,535 EXP)")
	assert.Contains(t, out, "EXP Needed: 2,400")
	assert.Contains(t, out, "Location: Route 101 (Grass)")
	assert.Contains(t, out, "Multiplier: No")
	assert.Contains(t, out, ">>> Estimated battles needed: 48 <<<")
	assert.Contains(t, out, "Projected level afterwards: 16")
	assert.NotContains(t, out, "Unknown species")
}

func TestBattlePlan_UnknownSpecies(t *testing.T) {
	plan, err := projection.NewPlan(species.Builtin(), "fakemon", 1, 0, 10, 100)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, report.BattlePlan(&buf, plan, report.Grind{}, report.Options{}))
	assert.Contains(t, buf.String(), "Unknown species SPECIES_FAKEMON, using medium_fast growth")
	assert.NotContains(t, buf.String(), "Location:")
}

func TestCurve(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Curve(&buf, growth.MediumFast, 9, 10))
	out := buf.String()
	assert.Contains(t, out, "Growth curve: medium_fast")
	assert.Contains(t, out, "1,000")
	assert.Contains(t, out, "331")
}
