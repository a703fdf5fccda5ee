package domain

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validator exposes the shared validator so adapters (HTTP binding, config)
// apply the same rules as the domain types.
func Validator() *validator.Validate { return validate }

// cloneStrings copies a string slice to prevent aliasing between records.
// Returns nil for nil input to maintain consistency.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
