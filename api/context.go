package api

import (
	"context"
)

type keyType string

const userIDKey keyType = "userID"

// ctxWithUserID adds a user ID to the context
func ctxWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// userIDFromCtx retrieves the authenticated user ID from the context. The
// empty string marks an anonymous request.
func userIDFromCtx(ctx context.Context) string {
	if value, ok := ctx.Value(userIDKey).(string); ok {
		return value
	}
	return ""
}
