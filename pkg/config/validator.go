package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validator collects configuration problems instead of failing on the
// first one.
type Validator struct {
	name   string
	errors []error
}

// NewValidator creates a validator named after the config struct it
// checks.
func NewValidator(name string) *Validator {
	return &Validator{name: name, errors: make([]error, 0)}
}

// Required validates that a string field is not empty.
func (v *Validator) Required(field, value string) *Validator {
	if value == "" {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: required field is empty", v.name, field))
	}
	return v
}

// MinInt validates that an int field is at least the minimum value.
func (v *Validator) MinInt(field string, value, min int) *Validator {
	if value < min {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %d is below minimum %d", v.name, field, value, min))
	}
	return v
}

// OneOf validates that a string field is one of the allowed values.
// An empty value passes; combine with Required when it must be set.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.errors = append(v.errors,
		fmt.Errorf("%s.%s: %q is not one of [%s]", v.name, field, value, strings.Join(allowed, ", ")))
	return v
}

// Err returns all collected problems joined, or nil.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return errors.Join(v.errors...)
}
