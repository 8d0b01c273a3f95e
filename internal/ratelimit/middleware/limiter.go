package middleware

import (
	"context"
	"log/slog"

	"terralegit/internal/ratelimit/models"
	"terralegit/pkg/platform/circuit"
)

// Limiter admits or rejects one request against a key.
type Limiter interface {
	Allow(ctx context.Context, key string, p models.Policy) (*models.Result, error)
}

// Fallback checks the primary limiter and answers from an in-process limiter
// while the primary is failing. The primary is still consulted on every
// call so the breaker can observe recovery.
type Fallback struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallback(primary, fallback Limiter, breaker *circuit.Breaker, logger *slog.Logger) *Fallback {
	return &Fallback{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

// Allow returns degraded=true when the answer came from the fallback.
func (f *Fallback) Allow(ctx context.Context, key string, p models.Policy) (res *models.Result, degraded bool, err error) {
	res, err = f.primary.Allow(ctx, key, p)
	if err != nil {
		_, change := f.breaker.RecordFailure()
		if change.Opened {
			f.logger.WarnContext(ctx, "rate limit store failing, using in-memory counters",
				"breaker", f.breaker.Name(), "error", err)
		}
		res, err = f.fallback.Allow(ctx, key, p)
		return res, true, err
	}

	usePrimary, change := f.breaker.RecordSuccess()
	if change.Closed {
		f.logger.InfoContext(ctx, "rate limit store recovered", "breaker", f.breaker.Name())
	}
	if !usePrimary {
		res, err = f.fallback.Allow(ctx, key, p)
		return res, true, err
	}
	return res, false, nil
}
