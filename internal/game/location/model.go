// Package location models the encounter dataset: named locations, the game
// version each belongs to, and the slot tables of every encounter method.
package location

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/expcalc/internal/game/encounter"
)

// Version identifies the game release a location's data belongs to.
type Version string

const (
	Ruby     Version = "Ruby"
	Sapphire Version = "Sapphire"
	Emerald  Version = "Emerald"
	Unknown  Version = "Unknown"
)

// Versions lists every version in report order.
var Versions = []Version{Ruby, Sapphire, Emerald, Unknown}

// Valid reports whether v is one of Versions.
func (v Version) Valid() bool {
	for _, known := range Versions {
		if v == known {
			return true
		}
	}
	return false
}

// ParseVersion converts a case-insensitive version name to a Version.
//
// Postcondition: Returns a valid Version or a non-nil error.
func ParseVersion(s string) (Version, error) {
	for _, v := range Versions {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown game version %q", s)
}

// MethodTable is the slot table of one encounter kind at one location.
type MethodTable struct {
	// EncounterRate is the per-step trigger rate, nominally out of 16.
	EncounterRate int
	Slots         []encounter.Slot
}

// Location is one map's wild-encounter data for one version.
type Location struct {
	ID      string
	Map     string
	Name    string
	Version Version
	Methods map[encounter.Kind]*MethodTable
}

// Method returns the slot table of kind k.
//
// Postcondition: ok is false when the location has no slots for k.
func (l *Location) Method(k encounter.Kind) (table *MethodTable, ok bool) {
	t, ok := l.Methods[k]
	if !ok || t == nil || len(t.Slots) == 0 {
		return nil, false
	}
	return t, true
}

// Dataset is a complete set of locations plus the weight tables shared by them.
type Dataset struct {
	Rates     encounter.RateSet
	Locations []*Location
}

// Validate checks dataset invariants: valid rate tables, unique non-empty
// location IDs, known versions, well-formed slots and slot tables no longer
// than their kind's weight table.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (d *Dataset) Validate() error {
	if err := d.Rates.Validate(); err != nil {
		return fmt.Errorf("rates: %w", err)
	}
	seen := make(map[string]bool, len(d.Locations))
	for i, loc := range d.Locations {
		if loc.ID == "" {
			return fmt.Errorf("location %d: id must not be empty", i)
		}
		if seen[loc.ID] {
			return fmt.Errorf("duplicate location id %q", loc.ID)
		}
		seen[loc.ID] = true
		if !loc.Version.Valid() {
			return fmt.Errorf("location %q: unknown version %q", loc.ID, loc.Version)
		}
		for _, k := range encounter.Kinds {
			table, ok := loc.Methods[k]
			if !ok || table == nil {
				continue
			}
			if table.EncounterRate < 0 {
				return fmt.Errorf("location %q: %s encounter_rate must be >= 0, got %d", loc.ID, k, table.EncounterRate)
			}
			if n, limit := len(table.Slots), len(d.Rates.For(k)); n > limit {
				return fmt.Errorf("location %q: %w: %s has %d slots but %d rates", loc.ID, encounter.ErrWeightMismatch, k, n, limit)
			}
			for j, s := range table.Slots {
				if s.Species == "" {
					return fmt.Errorf("location %q: %s slot %d: species must not be empty", loc.ID, k, j)
				}
				if err := s.Validate(); err != nil {
					return fmt.Errorf("location %q: %s slot %d: %w", loc.ID, k, j, err)
				}
			}
		}
	}
	return nil
}

// Filter returns a dataset holding only the locations of version v, sharing
// location values with d. An empty v returns d unchanged.
func (d *Dataset) Filter(v Version) *Dataset {
	if v == "" {
		return d
	}
	out := &Dataset{Rates: d.Rates}
	for _, loc := range d.Locations {
		if loc.Version == v {
			out.Locations = append(out.Locations, loc)
		}
	}
	return out
}

// FormatMapName converts a map constant to a display name: "MAP_ROUTE101"
// becomes "Route 101" and "MAP_PETALBURG_CITY" becomes "Petalburg City".
// Letters directly after a digit stay upper case, so "B1F" is kept.
func FormatMapName(mapName string) string {
	name := strings.TrimPrefix(mapName, "MAP_")
	if rest, ok := strings.CutPrefix(name, "ROUTE"); ok {
		num := strings.TrimLeftFunc(rest, unicode.IsDigit)
		digits := rest[:len(rest)-len(num)]
		if digits != "" {
			out := "Route " + digits
			if tail := titleWords(strings.TrimPrefix(num, "_")); tail != "" {
				out += " " + tail
			}
			return out
		}
	}
	return titleWords(name)
}

var titleCaser = cases.Title(language.English)

func titleWords(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// titleWord title-cases each run of letters in w independently.
func titleWord(w string) string {
	var b strings.Builder
	start := 0
	runes := []rune(w)
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && unicode.IsLetter(runes[i]) == unicode.IsLetter(runes[start]) {
			continue
		}
		seg := string(runes[start:i])
		if unicode.IsLetter(runes[start]) {
			seg = titleCaser.String(seg)
		}
		b.WriteString(seg)
		start = i
	}
	return b.String()
}
