package model

import (
	"errors"
	"fmt"
)

var (
	// ErrCourseNotFound is returned when the content store has no course
	// with the requested id.
	ErrCourseNotFound = errors.New("course not found")

	// ErrItemNotFound is returned when a content item references a record
	// the content store cannot resolve.
	ErrItemNotFound = errors.New("content item not found")

	// ErrInvalidFilter is returned by ParseFilter for unknown selectors.
	ErrInvalidFilter = errors.New("invalid filter")
)

// LookupError reports that the text fields of a content item could not be
// loaded from the content store.
type LookupError struct {
	// ItemID is the id of the unresolved item.
	ItemID string

	// Err is the underlying error, usually wrapping ErrItemNotFound.
	Err error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup content item %s: %v", e.ItemID, e.Err)
}

// Unwrap returns the underlying error.
func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError wraps err for the item with the given id.
func NewLookupError(itemID string, err error) *LookupError {
	return &LookupError{ItemID: itemID, Err: err}
}
