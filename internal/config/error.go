package config

import (
	"fmt"
	"strings"
)

// ValidationError reports a single invalid or missing configuration key.
type ValidationError struct {
	Key    string // Config key (e.g. "cluster.submit_command")
	Reason string // Why the value was rejected
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config key %s %s", e.Key, e.Reason)
}

// Is allows errors.Is to match ValidationError
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(key, reason string) *ValidationError {
	return &ValidationError{Key: key, Reason: reason}
}

// ValidationErrors aggregates every problem found in one validation pass so
// the user can fix the whole file at once.
type ValidationErrors []*ValidationError

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, ve := range e {
		errs = append(errs, ve)
	}
	return errs
}

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Error())
	}
	return fmt.Sprintf("invalid cluster config:\n  %s", strings.Join(msgs, "\n  "))
}
