// Package emerald reads the wild_encounters.json file of the Generation 3
// decompilation projects (pokeemerald, pokeruby) as an importer.Source.
package emerald

// File is the top-level structure of wild_encounters.json.
type File struct {
	Groups []Group `json:"wild_encounter_groups"`
}

// Group is one labelled group of encounter headers. Only groups with
// ForMaps set describe overworld maps.
type Group struct {
	Label      string      `json:"label"`
	ForMaps    bool        `json:"for_maps"`
	Fields     []Field     `json:"fields"`
	Encounters []MapHeader `json:"encounters"`
}

// Field declares the slot weights of one encounter type and, for
// fishing, the rod groups.
type Field struct {
	Type           string           `json:"type"`
	EncounterRates []int            `json:"encounter_rates"`
	Groups         map[string][]int `json:"groups"`
}

// MapHeader is one map's encounter header.
type MapHeader struct {
	Map       string     `json:"map"`
	BaseLabel string     `json:"base_label"`
	Land      *MonsTable `json:"land_mons"`
	Water     *MonsTable `json:"water_mons"`
	RockSmash *MonsTable `json:"rock_smash_mons"`
	Fishing   *MonsTable `json:"fishing_mons"`
}

// MonsTable is one encounter type's trigger rate and slots.
type MonsTable struct {
	EncounterRate int       `json:"encounter_rate"`
	Mons          []MonSlot `json:"mons"`
}

// MonSlot is one weighted species entry.
type MonSlot struct {
	MinLevel int    `json:"min_level"`
	MaxLevel int    `json:"max_level"`
	Species  string `json:"species"`
}
