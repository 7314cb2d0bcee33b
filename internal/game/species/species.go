// Package species holds the immutable reference table of base EXP yields and
// growth curves keyed by species identifier.
package species

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/expcalc/internal/game/growth"
)

// IDPrefix is the canonical prefix of every species identifier.
const IDPrefix = "SPECIES_"

// DefaultBaseExp is the base EXP yield substituted for unknown species.
const DefaultBaseExp = 50

//go:embed species.yaml
var builtinYAML []byte

// Record is the reference data for one species.
type Record struct {
	ID      string       `yaml:"id"`
	BaseExp int          `yaml:"base_exp"`
	Curve   growth.Curve `yaml:"growth"`
}

// Validate checks the record's invariants.
//
// Postcondition: Returns nil iff ID is non-empty, BaseExp >= 0 and Curve is valid.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("species record: id must not be empty")
	}
	if r.BaseExp < 0 {
		return fmt.Errorf("species %s: base_exp must be >= 0, got %d", r.ID, r.BaseExp)
	}
	if !r.Curve.Valid() {
		return fmt.Errorf("species %s: invalid growth curve %d", r.ID, int(r.Curve))
	}
	return nil
}

// DefaultRecord returns the record used for an identifier absent from the table.
//
// Postcondition: BaseExp == DefaultBaseExp and Curve == growth.DefaultCurve.
func DefaultRecord(id string) Record {
	return Record{ID: Normalize(id), BaseExp: DefaultBaseExp, Curve: growth.DefaultCurve}
}

// Normalize converts user or data-file spellings of a species identifier into the
// canonical form, e.g. "mudkip", "Mr Mime" and "SPECIES_MUDKIP" become
// "SPECIES_MUDKIP" and "SPECIES_MR_MIME".
func Normalize(id string) string {
	s := strings.ToUpper(strings.TrimSpace(id))
	s = strings.NewReplacer(" ", "_", "-", "_", ".", "", "'", "").Replace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, IDPrefix) {
		s = IDPrefix + s
	}
	return s
}

// DisplayName strips the canonical prefix, e.g. "SPECIES_MUDKIP" -> "MUDKIP".
func DisplayName(id string) string {
	return strings.TrimPrefix(id, IDPrefix)
}

// Table is an immutable lookup from species identifier to Record.
// A Table is safe for concurrent use.
type Table struct {
	records map[string]Record
}

// NewTable builds a Table from records.
//
// Precondition: records may be empty.
// Postcondition: Returns a Table containing every record under its normalised ID,
// or an error if any record is invalid or an ID appears twice.
func NewTable(records []Record) (*Table, error) {
	t := &Table{records: make(map[string]Record, len(records))}
	for i, r := range records {
		r.ID = Normalize(r.ID)
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := t.records[r.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate species id %q", i, r.ID)
		}
		t.records[r.ID] = r
	}
	return t, nil
}

// Lookup returns the record for id.
//
// Postcondition: Returns the record and true, or a zero Record and false if unknown.
func (t *Table) Lookup(id string) (Record, bool) {
	r, ok := t.records[Normalize(id)]
	return r, ok
}

// Resolve returns the record for id, substituting DefaultRecord for unknown IDs.
//
// Postcondition: Always returns a valid Record; known reports whether id was found.
func (t *Table) Resolve(id string) (rec Record, known bool) {
	if r, ok := t.Lookup(id); ok {
		return r, true
	}
	return DefaultRecord(id), false
}

// Len returns the number of species in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// IDs returns every species identifier in sorted order.
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.records))
	for id := range t.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type yamlTableFile struct {
	Species []Record `yaml:"species"`
}

// LoadTableFromBytes parses a species table from YAML.
//
// Precondition: data must be YAML with a top-level "species" list.
// Postcondition: Returns a validated Table or a non-nil error.
func LoadTableFromBytes(data []byte) (*Table, error) {
	var file yamlTableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing species YAML: %w", err)
	}
	t, err := NewTable(file.Species)
	if err != nil {
		return nil, fmt.Errorf("validating species table: %w", err)
	}
	return t, nil
}

// LoadTableFromFile reads a species table YAML file.
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns a validated Table or a non-nil error.
func LoadTableFromFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading species file %s: %w", path, err)
	}
	return LoadTableFromBytes(data)
}

var builtin = sync.OnceValues(func() (*Table, error) {
	return LoadTableFromBytes(builtinYAML)
})

// Builtin returns the embedded Generation 1-3 species table. The table is parsed
// once per process and shared; it is never mutated.
//
// Postcondition: Returns a non-nil Table with 386 species.
func Builtin() *Table {
	t, err := builtin()
	if err != nil {
		panic(fmt.Sprintf("species: embedded table is invalid: %v", err))
	}
	return t
}
