// Package sentinel holds the infrastructure facts stores and lockers report.
// Services translate them into coded domain errors with ToDomain; input
// validation failures use pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound means no row or record exists for the key.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness rule was violated, such as a second
	// active case for the same buyer and listing.
	ErrConflict = errors.New("conflict")
	// ErrLockHeld means another writer holds the entity lock.
	ErrLockHeld = errors.New("lock held")
	// ErrUnavailable means the database or lock backend could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
