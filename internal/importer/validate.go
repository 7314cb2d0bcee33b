package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cory-johannsen/expcalc/internal/game/species"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("species", validateSpecies)
	return v
}

func validateSpecies(fl validator.FieldLevel) bool {
	return strings.HasPrefix(fl.Field().String(), species.IDPrefix)
}

// formatValidationError flattens validator errors into a single message naming
// every failing field.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if e.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s (got %v)", e.Namespace(), e.Tag(), e.Param(), e.Value()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s fails %s (got %v)", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid dataset: %s", strings.Join(msgs, "; "))
}
