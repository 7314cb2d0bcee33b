package importer

// DatasetData is the common intermediate format produced by all Source
// implementations. Its YAML tags match the encounter dataset schema exactly,
// so it can be marshalled directly and validated by location.LoadDatasetFromBytes.
type DatasetData struct {
	Rates     RatesSpec      `yaml:"rates"`
	Locations []LocationSpec `yaml:"locations" validate:"dive"`
}

// RatesSpec holds the selection-weight tables shared by every location. Empty
// tables are omitted and fall back to the built-in defaults on load.
type RatesSpec struct {
	Land          []int            `yaml:"land,omitempty" validate:"dive,gt=0"`
	Water         []int            `yaml:"water,omitempty" validate:"dive,gt=0"`
	RockSmash     []int            `yaml:"rock_smash,omitempty" validate:"dive,gt=0"`
	Fishing       []int            `yaml:"fishing,omitempty" validate:"dive,gt=0"`
	FishingGroups map[string][]int `yaml:"fishing_groups,omitempty" validate:"dive,keys,oneof=old_rod good_rod super_rod,endkeys,min=1,dive,gte=0"`
}

// LocationSpec holds one location's encounter tables.
type LocationSpec struct {
	ID      string                `yaml:"id" validate:"required"`
	Map     string                `yaml:"map"`
	Name    string                `yaml:"name"`
	Version string                `yaml:"version" validate:"oneof=Ruby Sapphire Emerald Unknown"`
	Methods map[string]MethodSpec `yaml:"methods,omitempty" validate:"dive,keys,oneof=land water rock_smash fishing,endkeys"`
}

// MethodSpec holds one encounter kind's slot table.
type MethodSpec struct {
	EncounterRate int        `yaml:"encounter_rate" validate:"gte=0"`
	Slots         []SlotSpec `yaml:"slots" validate:"min=1,dive"`
}

// SlotSpec holds a single weighted slot.
type SlotSpec struct {
	Species  string `yaml:"species" validate:"required,species"`
	MinLevel int    `yaml:"min_level" validate:"gte=1,lte=100"`
	MaxLevel int    `yaml:"max_level" validate:"gtefield=MinLevel,lte=100"`
}

// Source loads encounter data from a format-specific file and produces
// DatasetData ready to be written as a dataset YAML file.
//
// Precondition: sourcePath must exist and hold data in the source's format.
// Postcondition: returns a non-nil DatasetData, or a non-nil error.
type Source interface {
	Load(sourcePath string) (*DatasetData, error)
}
