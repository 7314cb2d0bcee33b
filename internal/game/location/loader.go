package location

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/expcalc/internal/game/encounter"
)

// yamlDataset is the top-level YAML structure of a dataset file.
type yamlDataset struct {
	Rates     yamlRates      `yaml:"rates"`
	Locations []yamlLocation `yaml:"locations"`
}

type yamlRates struct {
	Land          []int            `yaml:"land"`
	Water         []int            `yaml:"water"`
	RockSmash     []int            `yaml:"rock_smash"`
	Fishing       []int            `yaml:"fishing"`
	FishingGroups map[string][]int `yaml:"fishing_groups"`
}

type yamlLocation struct {
	ID      string                     `yaml:"id"`
	Map     string                     `yaml:"map"`
	Name    string                     `yaml:"name"`
	Version string                     `yaml:"version"`
	Methods map[string]yamlMethodTable `yaml:"methods"`
}

type yamlMethodTable struct {
	EncounterRate int              `yaml:"encounter_rate"`
	Slots         []encounter.Slot `yaml:"slots"`
}

// LoadDatasetFromFile reads and validates a dataset YAML file.
//
// Precondition: path must point to a valid YAML dataset file.
// Postcondition: Returns a validated Dataset or a non-nil error.
func LoadDatasetFromFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file %s: %w", path, err)
	}
	return LoadDatasetFromBytes(data)
}

// LoadDatasetFromBytes parses and validates a dataset from YAML bytes. Missing
// rate tables fall back to encounter.DefaultRates and a location without a
// name gets one from FormatMapName.
//
// Precondition: data must be valid YAML conforming to the dataset schema.
// Postcondition: Returns a validated Dataset or a non-nil error.
func LoadDatasetFromBytes(data []byte) (*Dataset, error) {
	var file yamlDataset
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing dataset YAML: %w", err)
	}

	ds, err := convertYAMLDataset(file)
	if err != nil {
		return nil, fmt.Errorf("converting dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("validating dataset: %w", err)
	}
	return ds, nil
}

// convertYAMLDataset converts the parsed YAML structures into domain types.
func convertYAMLDataset(yd yamlDataset) (*Dataset, error) {
	rates := encounter.RateSet{
		Land:      yd.Rates.Land,
		Water:     yd.Rates.Water,
		RockSmash: yd.Rates.RockSmash,
		Fishing:   yd.Rates.Fishing,
	}
	if len(yd.Rates.FishingGroups) > 0 {
		rates.Tiers = make(encounter.TierSelector, len(yd.Rates.FishingGroups))
		for name, idx := range yd.Rates.FishingGroups {
			rod, err := encounter.ParseRod(name)
			if err != nil {
				return nil, fmt.Errorf("fishing_groups: %w", err)
			}
			rates.Tiers[rod] = idx
		}
	}

	ds := &Dataset{Rates: rates.WithDefaults()}
	for i, yl := range yd.Locations {
		version := Unknown
		if yl.Version != "" {
			v, err := ParseVersion(yl.Version)
			if err != nil {
				return nil, fmt.Errorf("location %d (%s): %w", i, yl.ID, err)
			}
			version = v
		}
		loc := &Location{
			ID:      yl.ID,
			Map:     yl.Map,
			Name:    yl.Name,
			Version: version,
			Methods: make(map[encounter.Kind]*MethodTable, len(yl.Methods)),
		}
		if loc.Name == "" {
			loc.Name = FormatMapName(loc.Map)
		}
		for name, ym := range yl.Methods {
			kind, err := encounter.ParseKind(name)
			if err != nil {
				return nil, fmt.Errorf("location %q: %w", yl.ID, err)
			}
			loc.Methods[kind] = &MethodTable{EncounterRate: ym.EncounterRate, Slots: ym.Slots}
		}
		ds.Locations = append(ds.Locations, loc)
	}
	return ds, nil
}
