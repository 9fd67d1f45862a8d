package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by every validation failure.
	ErrInvalidArgument = errors.New("store: invalid argument")
	// ErrMissingField: a required text column is absent or empty.
	ErrMissingField = errors.New("store: missing field")
	// ErrInvalidField: a numeric column is absent, not an integer or negative.
	ErrInvalidField = errors.New("store: invalid field")
	// ErrUnknownColumn: a projection or update names a column the table lacks.
	ErrUnknownColumn = errors.New("store: unknown column")

	ErrUnsupportedResource = errors.New("store: unsupported resource")
	ErrUnknownResource     = errors.New("store: unknown resource")
	ErrSchema              = errors.New("store: schema initialisation failed")
)

// FieldError reports the column a validation failure is about. errors.Is
// matches both its Kind and ErrInvalidArgument.
type FieldError struct {
	Kind  error
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Field)
}

func (e *FieldError) Unwrap() error { return e.Kind }

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func MissingField(field string) error {
	return &FieldError{Kind: ErrMissingField, Field: field}
}

func InvalidField(field string) error {
	return &FieldError{Kind: ErrInvalidField, Field: field}
}

func UnknownColumn(field string) error {
	return &FieldError{Kind: ErrUnknownColumn, Field: field}
}

func unsupported(op, uri string) error {
	return fmt.Errorf("%w: %s is not supported for %s", ErrUnsupportedResource, op, uri)
}
