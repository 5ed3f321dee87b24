package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrManifestUnavailable matches every *UnavailableError.
	ErrManifestUnavailable = errors.New("manifest unavailable")
	// ErrManifestMalformed matches every *MalformedError.
	ErrManifestMalformed = errors.New("manifest malformed")
)

// UnavailableError reports a manifest endpoint that could not be reached or
// answered with a non-2xx status.
type UnavailableError struct {
	Status     int
	StatusText string
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch components: %v", e.Err)
	}
	return fmt.Sprintf("failed to fetch components: %d %s", e.Status, e.StatusText)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrManifestUnavailable }

func (e *UnavailableError) Unwrap() error { return e.Err }

// MalformedError reports a response body that does not have the manifest shape.
type MalformedError struct {
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response format: %s: %v", e.Reason, e.Err)
	}
	return "invalid response format: " + e.Reason
}

func (e *MalformedError) Is(target error) bool { return target == ErrManifestMalformed }

func (e *MalformedError) Unwrap() error { return e.Err }
