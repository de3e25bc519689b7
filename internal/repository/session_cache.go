package repository

import (
	"context"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
)

// SessionCache is the read-through cache of hydrated user records keyed by
// user id. It is never a source of truth: every entry is reconstructable
// from the credential store.
type SessionCache interface {
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, userID string) (*entity.User, error)
	// Set writes the full user record with the configured TTL.
	Set(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, userID string) error
}
