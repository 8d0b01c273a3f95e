// Package models holds the rate limit result and policy types shared by the
// stores and the HTTP middleware.
package models

import (
	"math"
	"time"
)

// Policy is a sliding window limit: at most Limit requests per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Enabled reports whether the policy limits anything.
func (p Policy) Enabled() bool {
	return p.Limit > 0 && p.Window > 0
}

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window frees a slot,
// never less than one.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(r.ResetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// AnonymousWriteKey scopes a counter to writes from one client address.
func AnonymousWriteKey(clientIP string) string {
	return "ratelimit:anon_write:" + clientIP
}
