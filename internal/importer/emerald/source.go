package emerald

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/expcalc/internal/game/location"
	"github.com/cory-johannsen/expcalc/internal/importer"
)

var _ importer.Source = (*Source)(nil)

// Source implements importer.Source for a decompilation wild_encounters.json.
type Source struct {
	filter location.Version
	logger *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithVersionFilter keeps only headers of version v.
func WithVersionFilter(v location.Version) Option {
	return func(s *Source) { s.filter = v }
}

// WithLogger sets the logger receiving conversion warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// NewSource constructs a Source.
func NewSource(opts ...Option) *Source {
	s := &Source{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and converts the wild_encounters.json file at sourcePath.
// Conversion warnings are logged and do not fail the load.
//
// Precondition: sourcePath must name a readable JSON file.
// Postcondition: returns a non-nil DatasetData or a non-nil error.
func (s *Source) Load(sourcePath string) (*importer.DatasetData, error) {
	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sourcePath, err)
	}
	f, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	s.logger.Info("detected game", zap.String("game", string(DetectGame(f))))
	data, warnings := ConvertFile(f, s.filter)
	for _, w := range warnings {
		s.logger.Warn(w)
	}
	return data, nil
}
