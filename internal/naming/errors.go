package naming

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedName is returned when a name does not match its grammar.
	ErrMalformedName = errors.New("malformed name")

	// ErrInvalidField is returned when an identity holds a value outside the
	// token set of its segment and therefore cannot be formatted losslessly.
	ErrInvalidField = errors.New("invalid field")
)

func malformed(kind Kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrMalformedName, kind, name)
}

func invalidField(segment, value string) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidField, segment, value)
}
