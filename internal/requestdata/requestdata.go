package requestdata

import "context"

type contextKey int

const actorKey contextKey = iota

// WithActorID attaches the authenticated actor to the request context so
// mutations can be attributed in the audit history.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey, actorID)
}

// ActorID returns the authenticated actor, or "" for anonymous requests.
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok {
		return v
	}
	return ""
}
