package pgerr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"terralegit/pkg/platform/sentinel"
)

func TestTranslate(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Translate(nil))
	})

	t.Run("no rows is not found", func(t *testing.T) {
		err := Translate(fmt.Errorf("find listing: %w", sql.ErrNoRows))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("unique violation is conflict", func(t *testing.T) {
		err := Translate(&pq.Error{Code: "23505", Message: "duplicate key"})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("other sql errors pass through", func(t *testing.T) {
		err := Translate(&pq.Error{Code: "42P01", Message: "undefined table"})
		assert.False(t, errors.Is(err, sentinel.ErrUnavailable))
	})

	t.Run("connection failures are unavailable", func(t *testing.T) {
		err := Translate(errors.New("dial tcp: connection refused"))
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})
}
