package validation

import (
	"errors"
	"fmt"
	"slices"
)

// FieldError describes one invalid configuration value.
type FieldError struct {
	Section string
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s.%s: %s", e.Section, e.Field, e.Message)
}

// Checker collects every problem in a configuration section instead of
// stopping at the first one. Nested checkers share the parent's error list.
type Checker struct {
	section string
	errs    *[]error
}

// Check starts checking the named section.
func Check(section string) *Checker {
	return &Checker{section: section, errs: new([]error)}
}

// Section returns a checker for a nested section.
func (c *Checker) Section(name string) *Checker {
	section := name
	if c.section != "" {
		section = c.section + "." + name
	}
	return &Checker{section: section, errs: c.errs}
}

func (c *Checker) fail(field, format string, args ...any) *Checker {
	*c.errs = append(*c.errs, &FieldError{
		Section: c.section,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
	return c
}

// Require rejects an empty string.
func (c *Checker) Require(field, value string) *Checker {
	if value == "" {
		return c.fail(field, "required")
	}
	return c
}

// AtLeast rejects ints below min.
func (c *Checker) AtLeast(field string, value, min int) *Checker {
	if value < min {
		return c.fail(field, "%d is below minimum %d", value, min)
	}
	return c
}

// Proportion rejects values outside (0, 1].
func (c *Checker) Proportion(field string, value float64) *Checker {
	if value <= 0 || value > 1 {
		return c.fail(field, "proportion %v must be in (0, 1]", value)
	}
	return c
}

// Threshold rejects values outside [0, 1].
func (c *Checker) Threshold(field string, value float64) *Checker {
	if value < 0 || value > 1 {
		return c.fail(field, "threshold %v must be in [0, 1]", value)
	}
	return c
}

// OneOf rejects values not in allowed.
func (c *Checker) OneOf(field, value string, allowed ...string) *Checker {
	if !slices.Contains(allowed, value) {
		return c.fail(field, "%q must be one of %v", value, allowed)
	}
	return c
}

// Func records the error returned by fn, if any.
func (c *Checker) Func(field string, fn func() error) *Checker {
	if err := fn(); err != nil {
		return c.fail(field, "%v", err)
	}
	return c
}

// If runs checks only when cond holds.
func (c *Checker) If(cond bool, checks func(*Checker)) *Checker {
	if cond {
		checks(c)
	}
	return c
}

// Problems returns every recorded error.
func (c *Checker) Problems() []error {
	return slices.Clone(*c.errs)
}

// Err joins every recorded error, or returns nil.
func (c *Checker) Err() error {
	return errors.Join(*c.errs...)
}

// DefaultOr returns value unless it is the zero value.
func DefaultOr[T comparable](value, fallback T) T {
	var zero T
	if value == zero {
		return fallback
	}
	return value
}
