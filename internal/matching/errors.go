package matching

import "errors"

// ErrValidation wraps request field problems. It is the only error Match returns.
var ErrValidation = errors.New("validation error")

// ValidationError names the offending field.
type ValidationError struct {
	Field string
	Issue string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Issue }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
