package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrRequiredFieldMissing is matched by every MissingFieldError.
	ErrRequiredFieldMissing = errors.New("required credential missing")

	// ErrInvalidValue is matched by every InvalidValueError.
	ErrInvalidValue = errors.New("invalid credential value")
)

// MissingFieldError reports a required field that no layer could supply.
type MissingFieldError struct {
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("the value for %s is missing. Consider setting the env var %s or passing --%s",
		e.Field.Name, e.Field.Env, e.Field.Flag)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrRequiredFieldMissing
}

// InvalidValueError reports a value that could not be converted to the field's type.
type InvalidValueError struct {
	Field  Field
	Value  string
	Source Source
	Err    error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("the value %q for %s (from %s) is not a number", e.Value, e.Field.Name, e.Source)
}

func (e *InvalidValueError) Unwrap() []error {
	return []error{ErrInvalidValue, e.Err}
}
