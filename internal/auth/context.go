package auth

import (
	"context"

	"github.com/debemdeboas/the-press/internal/model"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// ContextKeyUserId is the key for user ID in request context
const ContextKeyUserId ContextKey = "userID"

func ContextWithUserId(ctx context.Context, userID model.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserId, userID)
}

func UserIdFromContext(ctx context.Context) (model.UserID, bool) {
	userID, ok := ctx.Value(ContextKeyUserId).(model.UserID)
	return userID, ok && userID != ""
}
