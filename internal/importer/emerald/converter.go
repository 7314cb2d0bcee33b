package emerald

import (
	"fmt"

	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/importer"
)

const unknownMap = "Unknown"

// ConvertFile converts a decoded wild_encounters.json file to the dataset
// intermediate format. Headers whose version differs from a non-empty filter
// are skipped. Headers repeating a map within one version are merged, later
// encounter types replacing earlier ones.
//
// Postcondition: Returns the dataset data and any non-fatal warnings.
func ConvertFile(f *File, filter location.Version) (*importer.DatasetData, []string) {
	var warnings []string
	game := DetectGame(f)
	rates, groups := headerRates(f)

	out := &importer.DatasetData{
		Rates: importer.RatesSpec{
			Land:          rates[fieldLand],
			Water:         rates[fieldWater],
			RockSmash:     rates[fieldRockSmash],
			Fishing:       rates[fieldFishing],
			FishingGroups: groups,
		},
	}

	index := make(map[string]int)
	for _, g := range f.Groups {
		if !g.ForMaps {
			continue
		}
		for i, e := range g.Encounters {
			version := EncounterVersion(e.BaseLabel, game)
			if filter != "" && version != filter {
				continue
			}
			mapName := e.Map
			if mapName == "" {
				mapName = unknownMap
				warnings = append(warnings, fmt.Sprintf("group %q encounter %d (%s) has no map", g.Label, i, e.BaseLabel))
			}
			id := importer.LocationID(mapName, string(version))

			pos, seen := index[id]
			if !seen {
				out.Locations = append(out.Locations, importer.LocationSpec{
					ID:      id,
					Map:     mapName,
					Name:    location.FormatMapName(mapName),
					Version: string(version),
					Methods: make(map[string]importer.MethodSpec),
				})
				pos = len(out.Locations) - 1
				index[id] = pos
			} else {
				warnings = append(warnings, fmt.Sprintf("map %s (%s) appears more than once; merging", mapName, version))
			}

			loc := &out.Locations[pos]
			for kind, table := range map[string]*MonsTable{
				"land":       e.Land,
				"water":      e.Water,
				"rock_smash": e.RockSmash,
				"fishing":    e.Fishing,
			} {
				if table == nil || len(table.Mons) == 0 {
					continue
				}
				loc.Methods[kind] = convertTable(table)
			}
		}
	}
	return out, warnings
}

func convertTable(t *MonsTable) importer.MethodSpec {
	spec := importer.MethodSpec{
		EncounterRate: t.EncounterRate,
		Slots:         make([]importer.SlotSpec, 0, len(t.Mons)),
	}
	for _, m := range t.Mons {
		spec.Slots = append(spec.Slots, importer.SlotSpec{
			Species:  m.Species,
			MinLevel: m.MinLevel,
			MaxLevel: m.MaxLevel,
		})
	}
	return spec
}
