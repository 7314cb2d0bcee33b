package emerald

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cory-johannsen/expcalc/internal/game/location"
)

// Game is the release family a wild_encounters.json file was taken from.
type Game string

const (
	// GameRubySapphire is the combined Ruby/Sapphire file; each header names its
	// version in a "_Ruby" or "_Sapphire" base label suffix.
	GameRubySapphire Game = "RS"
	// GameEmerald is the Emerald file; base labels start with "g".
	GameEmerald Game = "Emerald"
	GameUnknown Game = "Unknown"
)

// field type keys of wild_encounters.json
const (
	fieldLand      = "land_mons"
	fieldWater     = "water_mons"
	fieldRockSmash = "rock_smash_mons"
	fieldFishing   = "fishing_mons"
)

// Parse decodes the raw JSON of a wild_encounters.json file.
//
// Postcondition: Returns the decoded file or a non-nil error.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing wild encounters JSON: %w", err)
	}
	return &f, nil
}

// DetectGame identifies the release family from the first map header whose
// base label carries a version marker.
func DetectGame(f *File) Game {
	for _, g := range f.Groups {
		if !g.ForMaps {
			continue
		}
		for _, e := range g.Encounters {
			switch {
			case strings.Contains(e.BaseLabel, "_Ruby") || strings.Contains(e.BaseLabel, "_Sapphire"):
				return GameRubySapphire
			case strings.HasPrefix(e.BaseLabel, "g"):
				return GameEmerald
			}
		}
	}
	return GameUnknown
}

// EncounterVersion derives the version of one header from its base label and
// the file's release family.
func EncounterVersion(baseLabel string, game Game) location.Version {
	switch {
	case strings.Contains(baseLabel, "_Ruby"):
		return location.Ruby
	case strings.Contains(baseLabel, "_Sapphire"):
		return location.Sapphire
	case game == GameEmerald:
		return location.Emerald
	default:
		return location.Unknown
	}
}

// headerRates collects the slot weights and fishing groups declared in the map
// groups' field list. Types absent from the file are absent from the result.
func headerRates(f *File) (map[string][]int, map[string][]int) {
	rates := make(map[string][]int)
	var groups map[string][]int
	for _, g := range f.Groups {
		if !g.ForMaps {
			continue
		}
		for _, field := range g.Fields {
			if len(field.EncounterRates) > 0 {
				rates[field.Type] = field.EncounterRates
			}
			if field.Groups != nil {
				groups = field.Groups
			}
		}
	}
	return rates, groups
}
