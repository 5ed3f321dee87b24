package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is wrapped by adapters when a bounded wait expires.
	ErrTimeout = errors.New("browser operation timed out")
	// ErrUnavailable is wrapped by adapters that cannot start an engine.
	ErrUnavailable = errors.New("browser engine unavailable")
)

// NavigationError reports a navigation answered with a non-2xx status.
type NavigationError struct {
	URL    string
	Status int
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s returned %d", e.URL, e.Status)
}
