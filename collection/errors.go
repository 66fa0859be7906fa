package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no poem has the requested id.
	ErrNotFound = errors.New("poem not found")

	// ErrDenied is returned by Guarded mutators when the caller is not
	// authorized. It is an expected outcome, not a failure.
	ErrDenied = errors.New("admin access required")

	// ErrStorageCorrupt wraps the decode error of a stored collection that
	// could not be parsed. Open recovers from it by re-seeding.
	ErrStorageCorrupt = errors.New("stored collection is corrupt")
)

// ValidationError reports a required field that was missing or blank.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
