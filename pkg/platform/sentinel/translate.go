package sentinel

import (
	"errors"

	dErrors "terralegit/pkg/domain-errors"
)

// ToDomain translates a store error into a coded domain error. what names
// the entity for the message ("listing", "shipment"). Errors that already
// carry a code are returned unchanged.
func ToDomain(err error, what string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, what+" already exists")
	case errors.Is(err, ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "storage unavailable")
	case errors.Is(err, ErrLockHeld):
		return dErrors.Wrap(err, dErrors.CodeTimeout, what+" is locked by another writer")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+what)
	}
}
