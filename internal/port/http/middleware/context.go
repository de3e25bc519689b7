package middleware

import (
	"context"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
)

type contextKey string

const userCtxKey = contextKey("current_user")

// UserFromContext returns the authenticated user placed by Authenticate.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(userCtxKey).(*entity.User)
	return user, ok
}

func withUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}
