// Package store persists saved CV documents behind a repository interface
// with a read-through cache.
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document does not exist for the caller.
	ErrNotFound = errors.New("document not found")
	// ErrForbidden is returned when a document belongs to another user.
	ErrForbidden = errors.New("document belongs to another user")
)

// PersistenceError represents a failed save, load, list or delete
type PersistenceError struct {
	Op    string
	ID    string
	Cause error
}

func (e *PersistenceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("persistence error: %s %s: %v", e.Op, e.ID, e.Cause)
	}
	return fmt.Sprintf("persistence error: %s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
