// Package tx carries the current unit of work through context.
//
// Postgres-backed stores read the *sql.Tx with From and fall back to the pool
// when none is present. In-memory stores register their writes on a Journal,
// which applies them only when the unit of work commits.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// Runner executes fn as a single unit of work. Implementations must join an
// existing unit already carried by ctx instead of starting a new one.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}
