package service

import (
	"errors"
	"fmt"
)

// Workflow error kinds. Handlers map these to distinct HTTP responses: the
// caller must always be able to tell "not found" from "not yet available"
// from "try again".
var (
	ErrCatalogItemNotFound   = errors.New("catalog item not found")
	ErrCatalogItemNotActive  = errors.New("catalog item is not active")
	ErrListingNotFound       = errors.New("menu listing not found")
	ErrRestaurantNotFound    = errors.New("restaurant not found")
	ErrNotRestaurantOwner    = errors.New("restaurant is not owned by this vendor")
	ErrEditorialFieldsLocked = errors.New("editorial fields are locked to the catalog item")
	ErrStoreUnavailable      = errors.New("store unavailable")
)

// ValidationError reports a malformed or missing input field. Always
// caller-fixable, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// storeFailure marks an error as a transient backing-store failure, safe for
// the caller to retry with backoff.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
