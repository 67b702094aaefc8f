package domain

import "fmt"

// ValidationError describes a field constraint violation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func errRequired(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

func errInvalid(field string) error {
	return &ValidationError{Field: field, Reason: "is invalid"}
}

func errTooLong(field string, max int) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("cannot be more than %d characters", max)}
}
