package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxAllowlist bounds explicit node allowlists used for sampling
	MaxAllowlist = 100000
)

func init() {
	validate = validator.New()
}

// Struct validates an options struct using its `validate` tags and returns
// the first failure in a readable form.
func Struct(v any) error {
	if v == nil {
		return errors.New("options cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Proportion validates that p lies in (0, 1].
func Proportion(field string, p float64) error {
	if p <= 0 || p > 1 {
		return fmt.Errorf("%s: proportion %v must be in (0, 1]", field, p)
	}
	return nil
}

// Threshold validates that t lies in [0, 1].
func Threshold(field string, t float64) error {
	if t < 0 || t > 1 {
		return fmt.Errorf("%s: threshold %v must be in [0, 1]", field, t)
	}
	return nil
}

// Allowlist validates an explicit node allowlist.
func Allowlist(nodes []string) error {
	if len(nodes) == 0 {
		return errors.New("allowlist: must name at least one node")
	}
	if len(nodes) > MaxAllowlist {
		return fmt.Errorf("allowlist: maximum %d nodes allowed, got %d", MaxAllowlist, len(nodes))
	}
	for i, n := range nodes {
		if n == "" {
			return fmt.Errorf("allowlist: empty node id at index %d", i)
		}
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "lt":
			return fmt.Errorf("%s: must be less than %s", field, param)
		case "ltefield":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "dive":
			// For array elements
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
