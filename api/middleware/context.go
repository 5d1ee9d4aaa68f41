package middleware

import (
	"context"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/auth"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated actor, or the zero Actor for
// anonymous requests.
func ActorFromContext(ctx context.Context) auth.Actor {
	if ctx == nil {
		return auth.Actor{}
	}
	if v, ok := ctx.Value(ctxActor).(auth.Actor); ok {
		return v
	}
	return auth.Actor{}
}

// UserIDFromContext returns the actor id as a string, empty when anonymous.
func UserIDFromContext(ctx context.Context) string {
	actor := ActorFromContext(ctx)
	if actor.IsAnonymous() {
		return ""
	}
	return actor.ID.String()
}

// WithActor injects the actor into the context.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
