package context

import (
	"context"
	"strings"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	actorIDKey   ctxKey = "actor_id"
	actorRoleKey ctxKey = "actor_role"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithActor records the authenticated uid and its role for logs and audit stamps.
func WithActor(ctx context.Context, uid, role string) context.Context {
	ctx = context.WithValue(ctx, actorIDKey, strings.TrimSpace(uid))
	return context.WithValue(ctx, actorRoleKey, strings.TrimSpace(role))
}

func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	uid, _ := ctx.Value(actorIDKey).(string)
	role, _ := ctx.Value(actorRoleKey).(string)
	return uid, role
}
