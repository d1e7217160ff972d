package mvbb

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is returned when the point cloud is empty, holds a non-finite coordinate, or
	// when the configuration cannot drive a search.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidBoxExtent is returned when a box would be built with a minimum corner above its
	// maximum corner.
	ErrInvalidBoxExtent = errors.New("invalid box extent")
)

// invalidInputError ties a lower level cause to ErrInvalidInput so that errors.Is matches both.
type invalidInputError struct {
	cause error
}

func newInvalidInputError(cause error) error {
	return &invalidInputError{cause: cause}
}

func (e *invalidInputError) Error() string {
	return ErrInvalidInput.Error() + ": " + e.cause.Error()
}

func (e *invalidInputError) Unwrap() []error {
	return []error{ErrInvalidInput, e.cause}
}

func newBadExtentError(minPoint, maxPoint r3.Vector) error {
	return errors.Wrapf(ErrInvalidBoxExtent, "min corner %v is not below max corner %v", minPoint, maxPoint)
}
