package location

import (
	"fmt"
	"sort"
	"strings"
)

// Manager indexes a dataset's locations for lookup and search. A Manager is
// read-only after construction and safe for concurrent use.
type Manager struct {
	dataset *Dataset
	byID    map[string]*Location
}

// NewManager creates a Manager over ds.
//
// Precondition: ds must be non-nil.
// Postcondition: Returns a Manager with all locations indexed by ID, or an error on duplicate IDs.
func NewManager(ds *Dataset) (*Manager, error) {
	if ds == nil {
		return nil, fmt.Errorf("location.NewManager: dataset must not be nil")
	}
	m := &Manager{dataset: ds, byID: make(map[string]*Location, len(ds.Locations))}
	for _, loc := range ds.Locations {
		if _, exists := m.byID[loc.ID]; exists {
			return nil, fmt.Errorf("duplicate location ID: %q", loc.ID)
		}
		m.byID[loc.ID] = loc
	}
	return m, nil
}

// Dataset returns the underlying dataset.
func (m *Manager) Dataset() *Dataset {
	return m.dataset
}

// Get returns the location with the given ID.
func (m *Manager) Get(id string) (*Location, bool) {
	loc, ok := m.byID[id]
	return loc, ok
}

// Len returns the number of locations.
func (m *Manager) Len() int {
	return len(m.byID)
}

// Search returns every location whose display name, map constant or ID
// contains query, ignoring case, sorted by name then version.
//
// Postcondition: An empty query matches nothing.
func (m *Manager) Search(query string) []*Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []*Location
	for _, loc := range m.dataset.Locations {
		if strings.Contains(strings.ToLower(loc.Name), q) ||
			strings.Contains(strings.ToLower(loc.Map), q) ||
			strings.Contains(strings.ToLower(loc.ID), q) {
			out = append(out, loc)
		}
	}
	sortLocations(out)
	return out
}

func sortLocations(locs []*Location) {
	sort.SliceStable(locs, func(i, j int) bool {
		if locs[i].Name != locs[j].Name {
			return locs[i].Name < locs[j].Name
		}
		return versionOrder(locs[i].Version) < versionOrder(locs[j].Version)
	})
}

func versionOrder(v Version) int {
	for i, known := range Versions {
		if v == known {
			return i
		}
	}
	return len(Versions)
}
