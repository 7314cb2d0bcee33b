package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/expcalc/internal/report"
)

const testDataset = "../../content/encounters.yaml"

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func dataArgs(cmd string, extra ...string) []string {
	return append([]string{cmd, "-dataset", testDataset, "-log-level", "error"}, extra...)
}

func TestRun_UnknownCommand(t *testing.T) {
	_, err := runCmd(t, "frobnicate")
	assert.ErrorContains(t, err, `unknown command "frobnicate"`)

	_, err = runCmd(t)
	assert.Error(t, err)
}

func TestRun_Help(t *testing.T) {
	out, err := runCmd(t, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "rankings")

	_, err = runCmd(t, "report", "-h")
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestRun_Report(t *testing.T) {
	out, err := runCmd(t, dataArgs("report", "-multiplier")...)
	require.NoError(t, err)
	assert.Contains(t, out, "(WITH 1.5x MULTIPLIER)")
	assert.Contains(t, out, "Route 101")
	assert.Contains(t, out, "Granite Cave B1F")
}

func TestRun_ReportGameFilter(t *testing.T) {
	out, err := runCmd(t, dataArgs("report", "-game", "ruby")...)
	require.NoError(t, err)
	assert.NotContains(t, out, "Route 101")

	_, err = runCmd(t, dataArgs("report", "-game", "crystal")...)
	assert.ErrorContains(t, err, "unknown game version")
}

func TestRun_Rankings(t *testing.T) {
	out, err := runCmd(t, dataArgs("rankings", "-top", "3")...)
	require.NoError(t, err)
	assert.Contains(t, out, "TOP GRINDING LOCATIONS BY EFFICIENCY SCORE")
	assert.Contains(t, out, "Top 3 locations by efficiency:")
}

func TestRun_Search(t *testing.T) {
	out, err := runCmd(t, dataArgs("search", "route", "101")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 location(s):")
	assert.Contains(t, out, "Route 101 (Emerald)")

	out, err = runCmd(t, dataArgs("search", "mt. pyre")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No locations found.")

	_, err = runCmd(t, dataArgs("search")...)
	assert.Error(t, err)
}

func TestRun_BattlesPerBattle(t *testing.T) {
	out, err := runCmd(t, dataArgs("battles", "-pokemon", "mudkip", "-level", "5", "-target", "16", "-per-battle", "50")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Target:  Level 16 (2,535 EXP)")
	assert.Contains(t, out, ">>> Estimated battles needed: 48 <<<")
	assert.Contains(t, out, "Projected level afterwards: 16")
}

func TestRun_BattlesAtLocation(t *testing.T) {
	out, err := runCmd(t, dataArgs("battles", "-pokemon", "treecko", "-level", "5", "-target", "10", "-location", "granite cave", "-method", "rock_smash")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Location: Granite Cave B1F (Emerald) (Rock Smash)")

	_, err = runCmd(t, dataArgs("battles", "-pokemon", "treecko", "-level", "5", "-target", "10", "-location", "route 101", "-method", "surfing")...)
	assert.ErrorContains(t, err, "has no surfing encounters")
}

func TestRun_BattlesRequiresTarget(t *testing.T) {
	_, err := runCmd(t, dataArgs("battles", "-pokemon", "mudkip")...)
	assert.ErrorContains(t, err, "usage")
}

func TestRun_Curve(t *testing.T) {
	out, err := runCmd(t, "curve", "-curve", "medium-fast", "-from", "9", "-to", "10", "-log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Growth curve: medium_fast")
	assert.Contains(t, out, "1,000")

	_, err = runCmd(t, "curve", "-from", "50", "-to", "10")
	assert.Error(t, err)
}

func TestRun_ExportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, err := runCmd(t, dataArgs("export", "-out", path)...)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, report.CSVHeader, records[0])

	var methods []string
	for _, r := range records[1:] {
		if r[0] == "Dewford Town" {
			methods = append(methods, r[2])
		}
	}
	assert.Equal(t, "Surfing,Fishing Old Rod,Fishing Good Rod,Fishing Super Rod", strings.Join(methods, ","))
}
