package options

import (
	"errors"
	"fmt"
)

// ErrMissingValue is the sentinel matched by MissingValueError.
var ErrMissingValue = errors.New("option requires a value")

// ExitCodeMissingValue is the process exit status used when a valued option has no value.
const ExitCodeMissingValue = 2

// MissingValueError reports a valued option given as the last token.
type MissingValueError struct {
	Option string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("the option %s requires a value", e.Option)
}

// Unwrap lets errors.Is match ErrMissingValue.
func (e *MissingValueError) Unwrap() error { return ErrMissingValue }
