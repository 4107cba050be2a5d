package utils

import (
	"github.com/pkg/errors"
)

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError(expected interface{}, actual interface{}) error {
	return errors.Errorf("expected %T but got %T", expected, actual)
}

// NewLengthMismatchError is used when two parallel sequences differ in length.
func NewLengthMismatchError(what string, expected, actual int) error {
	return errors.Errorf("%s length mismatch: expected %d but got %d", what, expected, actual)
}

// NewOutOfRangeError is used when an index falls outside [0, length).
func NewOutOfRangeError(what string, index, length int) error {
	return errors.Errorf("%s index %d out of range [0, %d)", what, index, length)
}
