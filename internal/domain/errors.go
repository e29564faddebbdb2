package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchUnavailable is terminal for a query: the search surface could not be read.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrRatingUnavailable marks a rating call that produced no usable value.
	ErrRatingUnavailable = errors.New("rating unavailable")
	// ErrSignalLookupFailed marks a signal backend failure; callers fall back to defaults.
	ErrSignalLookupFailed = errors.New("signal lookup failed")
	// ErrNoValidResults is returned when every stub was dropped.
	ErrNoValidResults = errors.New("no valid results")
)

// FetchError describes a degraded content fetch.
type FetchError struct {
	Status FetchStatus
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
