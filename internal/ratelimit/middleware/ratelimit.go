// Package middleware limits anonymous writes on the public API.
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"terralegit/internal/ratelimit/models"
	"terralegit/pkg/platform/httputil"
	request "terralegit/pkg/platform/middleware/request"
	"terralegit/pkg/requestcontext"
)

// Checker is satisfied by *Fallback and by plain stores wrapped with Direct.
type Checker interface {
	Allow(ctx context.Context, key string, p models.Policy) (*models.Result, bool, error)
}

type direct struct{ l Limiter }

func (d direct) Allow(ctx context.Context, key string, p models.Policy) (*models.Result, bool, error) {
	res, err := d.l.Allow(ctx, key, p)
	return res, false, err
}

// Direct adapts a single store with no fallback.
func Direct(l Limiter) Checker {
	return direct{l: l}
}

type Middleware struct {
	checker Checker
	policy  models.Policy
	logger  *slog.Logger
}

func New(checker Checker, policy models.Policy, logger *slog.Logger) *Middleware {
	if !policy.Enabled() {
		logger.Info("anonymous write rate limiting disabled")
	}
	return &Middleware{checker: checker, policy: policy, logger: logger}
}

// AnonymousWrites limits state-changing requests from callers without a
// bearer token, keyed by client address. It must run after authentication.
// A failing store lets the request through.
func (m *Middleware) AnonymousWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !m.policy.Enabled() || isSafeMethod(r.Method) || !requestcontext.Actor(ctx).IsAnonymous() {
			next.ServeHTTP(w, r)
			return
		}

		result, degraded, err := m.checker.Allow(ctx, models.AnonymousWriteKey(ClientIP(r)), m.policy)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"error", err,
				"request_id", request.GetRequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		if degraded {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}

		if !result.Allowed {
			retry := result.RetryAfter(requestcontext.Now(ctx))
			m.logger.WarnContext(ctx, "anonymous write rate limited",
				"path", r.URL.Path,
				"request_id", request.GetRequestID(ctx),
			)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":             "rate_limit_exceeded",
				"error_description": "too many requests from this address, sign in or retry later",
				"retry_after":       retry,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
