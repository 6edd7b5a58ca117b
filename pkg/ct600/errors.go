package ct600

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAccounts is returned when a return is built without an
	// accounts attachment.
	ErrMissingAccounts = errors.New("accounts attachment is required")
	// ErrMissingComputations is returned when a return is built without a
	// computations attachment.
	ErrMissingComputations = errors.New("computations attachment is required")
)

// MissingRequiredFieldError reports a mandatory box absent from the value
// set. Raised at construction, before any network activity.
type MissingRequiredFieldError struct {
	Box int
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("mandatory box %d is missing", e.Box)
}

// InvalidValueTypeError reports a value that cannot be rendered in its box's
// declared kind, e.g. non-numeric text in a money box.
type InvalidValueTypeError struct {
	Box   int
	Kind  Kind
	Value any
}

func (e *InvalidValueTypeError) Error() string {
	return fmt.Sprintf("box %d: value %v cannot be rendered as %s", e.Box, e.Value, e.Kind)
}
