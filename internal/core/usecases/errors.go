package usecases

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input. Nothing was persisted.
	ErrValidation = errors.New("validation failed")
	// ErrUpstreamUnavailable means the profile directory could not be read.
	// It is distinct from an empty directory, which is a valid match input.
	ErrUpstreamUnavailable = errors.New("profile directory unavailable")
	// ErrStorageUnavailable means media storage is not configured or failing.
	ErrStorageUnavailable = errors.New("media storage unavailable")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
