package crawler

import (
	"errors"
	"fmt"
)

// ErrBrowserStart indicates the automation allocator could not come up.
// Fatal to the whole run; never retried.
var ErrBrowserStart = errors.New("browser start failed")

// ErrPageLoadTimeout indicates the results feed never became visible.
// Fatal to the search job that hit it.
var ErrPageLoadTimeout = errors.New("page load timeout")

// ErrSerialization indicates the snapshot could not be encoded or written.
// Fatal to the run's persistence; no partial file is left behind.
var ErrSerialization = errors.New("snapshot serialization failed")

// NavigationError reports that a place visit exhausted its retry budget.
// The failure is isolated to the named venue; siblings are unaffected.
type NavigationError struct {
	Venue    string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %q failed after %d attempts: %v", e.Venue, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
