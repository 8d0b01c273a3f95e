// Package requestcontext carries the actor, request id and request time
// through context.Context so services never import net/http. HTTP middleware
// sets them; service tests set them directly:
//
//	ctx = requestcontext.WithActor(ctx, id.Actor{ID: userID, Role: id.RoleComplianceAdmin})
//	ctx = requestcontext.WithTime(ctx, fixed)
package requestcontext

import (
	"context"
	"time"

	id "terralegit/pkg/domain"
)

type (
	actorKey     struct{}
	requestIDKey struct{}
	timeKey      struct{}
)

// Actor returns the authenticated principal, or the anonymous zero Actor.
func Actor(ctx context.Context) id.Actor {
	a, _ := ctx.Value(actorKey{}).(id.Actor)
	return a
}

func WithActor(ctx context.Context, actor id.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// RequestID returns the correlation id, or "" outside a request.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the time pinned for this request. Work outside a request, such
// as the outbox relay, gets the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins "now" for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}
