package emerald_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/importer"
	"github.com/cory-johannsen/expcalc/internal/importer/emerald"
)

func parseFixture(t *testing.T, name string) *emerald.File {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	f, err := emerald.Parse(raw)
	require.NoError(t, err)
	return f
}

func findLocation(t *testing.T, data *importer.DatasetData, id string) importer.LocationSpec {
	t.Helper()
	for _, loc := range data.Locations {
		if loc.ID == id {
			return loc
		}
	}
	require.Failf(t, "location not found", "id %q", id)
	return importer.LocationSpec{}
}

func TestDetectGame(t *testing.T) {
	assert.Equal(t, emerald.GameEmerald, emerald.DetectGame(parseFixture(t, "emerald.json")))
	assert.Equal(t, emerald.GameRubySapphire, emerald.DetectGame(parseFixture(t, "ruby_sapphire.json")))
	assert.Equal(t, emerald.GameUnknown, emerald.DetectGame(&emerald.File{}))
}

func TestEncounterVersion(t *testing.T) {
	assert.Equal(t, location.Ruby, emerald.EncounterVersion("Route102_Ruby", emerald.GameRubySapphire))
	assert.Equal(t, location.Sapphire, emerald.EncounterVersion("Route102_Sapphire", emerald.GameRubySapphire))
	assert.Equal(t, location.Emerald, emerald.EncounterVersion("gRoute101", emerald.GameEmerald))
	assert.Equal(t, location.Unknown, emerald.EncounterVersion("Route101", emerald.GameUnknown))
}

func TestParse_RejectsInvalidJSON(t *testing.T) {
	_, err := emerald.Parse([]byte(`{"wild_encounter_groups": [`))
	assert.Error(t, err)
}

func TestConvertFile_Emerald(t *testing.T) {
	data, warnings := emerald.ConvertFile(parseFixture(t, "emerald.json"), "")
	assert.Empty(t, warnings)
	require.Len(t, data.Locations, 3)

	assert.Equal(t, []int{70, 30, 60, 20, 20, 40, 40, 15, 4, 1}, data.Rates.Fishing)
	assert.Equal(t, []int{2, 3, 4}, data.Rates.FishingGroups["good_rod"])

	r101 := findLocation(t, data, "route101_emerald")
	assert.Equal(t, "Route 101", r101.Name)
	assert.Equal(t, "Emerald", r101.Version)
	require.Contains(t, r101.Methods, "land")
	assert.Len(t, r101.Methods["land"].Slots, 12)
	assert.Equal(t, 20, r101.Methods["land"].EncounterRate)

	petal := findLocation(t, data, "petalburg_city_emerald")
	assert.Len(t, petal.Methods, 2)
	assert.Len(t, petal.Methods["fishing"].Slots, 10)

	cave := findLocation(t, data, "granite_cave_b1f_emerald")
	assert.Equal(t, "Granite Cave B1F", cave.Name)
	assert.NotContains(t, cave.Methods, "land", "empty tables are dropped")
	assert.Contains(t, cave.Methods, "rock_smash")
}

func TestConvertFile_RubySapphireSplitsVersions(t *testing.T) {
	data, warnings := emerald.ConvertFile(parseFixture(t, "ruby_sapphire.json"), "")
	require.Len(t, data.Locations, 3)
	assert.Len(t, warnings, 1)

	ruby := findLocation(t, data, "route102_ruby")
	assert.Equal(t, "SPECIES_POOCHYENA", ruby.Methods["land"].Slots[0].Species)
	sapphire := findLocation(t, data, "route102_sapphire")
	assert.Equal(t, "SPECIES_ZIGZAGOON", sapphire.Methods["land"].Slots[0].Species)

	unknownMap := findLocation(t, data, "unknown_ruby")
	assert.Equal(t, "Unknown", unknownMap.Name)

	assert.Empty(t, data.Rates.Water)
	assert.Nil(t, data.Rates.FishingGroups)
}

func TestConvertFile_VersionFilter(t *testing.T) {
	data, _ := emerald.ConvertFile(parseFixture(t, "ruby_sapphire.json"), location.Sapphire)
	require.Len(t, data.Locations, 1)
	assert.Equal(t, "route102_sapphire", data.Locations[0].ID)

	data, _ = emerald.ConvertFile(parseFixture(t, "emerald.json"), location.Ruby)
	assert.Empty(t, data.Locations)
}

func TestConvertFile_MergesRepeatedMaps(t *testing.T) {
	f := &emerald.File{Groups: []emerald.Group{{
		ForMaps: true,
		Encounters: []emerald.MapHeader{
			{Map: "MAP_ROUTE104", BaseLabel: "gRoute104", Land: &emerald.MonsTable{EncounterRate: 20, Mons: []emerald.MonSlot{{MinLevel: 4, MaxLevel: 5, Species: "SPECIES_TAILLOW"}}}},
			{Map: "MAP_ROUTE104", BaseLabel: "gRoute104_Water", Water: &emerald.MonsTable{EncounterRate: 4, Mons: []emerald.MonSlot{{MinLevel: 20, MaxLevel: 30, Species: "SPECIES_WINGULL"}}}},
		},
	}}}
	data, warnings := emerald.ConvertFile(f, "")
	require.Len(t, data.Locations, 1)
	assert.Len(t, warnings, 1)
	assert.Contains(t, data.Locations[0].Methods, "land")
	assert.Contains(t, data.Locations[0].Methods, "water")
}

func TestSource_LoadThroughImporter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	src := emerald.NewSource(emerald.WithLogger(zap.New(core)))
	out, ds, err := importer.New(src, nil).Convert(filepath.Join("testdata", "emerald.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Len(t, ds.Locations, 3)
	assert.Equal(t, 1, logs.FilterMessage("detected game").Len())
}

func TestSource_LoadMissingFile(t *testing.T) {
	_, err := emerald.NewSource().Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSource_VersionFilterOption(t *testing.T) {
	src := emerald.NewSource(emerald.WithVersionFilter(location.Ruby))
	data, err := src.Load(filepath.Join("testdata", "ruby_sapphire.json"))
	require.NoError(t, err)
	require.Len(t, data.Locations, 2)
	for _, loc := range data.Locations {
		assert.Equal(t, "Ruby", loc.Version)
	}
}
