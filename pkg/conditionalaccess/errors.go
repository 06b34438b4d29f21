package conditionalaccess

import (
	"errors"
	"fmt"
)

// ErrCountryNotRecognized reports a country search pattern that matched no
// entry in the country table. Distinct from "zero policies matched", which is
// an empty (non-error) result.
var ErrCountryNotRecognized = errors.New("pattern matched no known country or region")

// SourceFetchError wraps a failed top-level listing. It is fatal to the run:
// assembly never substitutes partial data for a collection it could not fetch.
type SourceFetchError struct {
	Resource string
	Err      error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("failed to list %s: %v", e.Resource, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}
