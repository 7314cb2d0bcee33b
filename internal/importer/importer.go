package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/expcalc/internal/game/location"
)

// Importer orchestrates encounter import from a Source to a dataset file.
type Importer struct {
	source   Source
	validate *validator.Validate
	logger   *zap.Logger
}

// New constructs an Importer backed by the given Source.
//
// Precondition: source must be non-nil; a nil logger disables logging.
// Postcondition: returns a non-nil Importer.
func New(source Source, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{source: source, validate: newValidator(), logger: logger}
}

// Convert loads sourcePath, validates the intermediate data and serialises it
// as dataset YAML. The YAML is loaded back before returning so the output is
// known to be loadable.
//
// Postcondition: returns the YAML and its parsed Dataset, or a non-nil error.
func (imp *Importer) Convert(sourcePath string) ([]byte, *location.Dataset, error) {
	t0 := time.Now()
	data, err := imp.source.Load(sourcePath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Info("loaded source",
		zap.String("path", sourcePath),
		zap.Int("locations", len(data.Locations)),
		zap.Duration("elapsed", time.Since(t0).Round(time.Millisecond)),
	)

	if err := imp.validate.Struct(data); err != nil {
		return nil, nil, formatValidationError(err)
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("serialising dataset: %w", err)
	}

	ds, err := location.LoadDatasetFromBytes(out)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset failed validation: %w", err)
	}
	return out, ds, nil
}

// Run converts sourcePath and writes the dataset YAML to outPath, creating its
// directory if needed.
//
// Precondition: sourcePath must satisfy the source's format; outPath's parent
// must exist or be creatable.
// Postcondition: outPath holds a loadable dataset, or an error is returned.
func (imp *Importer) Run(sourcePath, outPath string) error {
	overall := time.Now()

	out, ds, err := imp.Convert(sourcePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return fmt.Errorf("writing dataset to %s: %w", outPath, err)
	}

	imp.logger.Info("wrote dataset",
		zap.String("path", outPath),
		zap.Int("locations", len(ds.Locations)),
		zap.Duration("elapsed", time.Since(overall).Round(time.Millisecond)),
	)
	return nil
}
