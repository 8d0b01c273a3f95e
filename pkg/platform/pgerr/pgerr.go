// Package pgerr translates lib/pq driver errors into sentinel errors.
package pgerr

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"terralegit/pkg/platform/sentinel"
)

const uniqueViolation = pq.ErrorCode("23505")

// Translate maps driver errors to sentinels and wraps the original:
// sql.ErrNoRows becomes ErrNotFound, a unique violation becomes ErrConflict,
// and anything that is not a server-side SQL error (connection refused,
// broken pipe, pool exhausted) becomes ErrUnavailable.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Join(sentinel.ErrNotFound, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == uniqueViolation {
			return errors.Join(sentinel.ErrConflict, err)
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(sentinel.ErrUnavailable, err)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
