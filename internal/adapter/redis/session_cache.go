package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

const sessionKeyPrefix = "session:"

// cachedUser is the cache wire shape. It carries the full record, secrets
// included, so a cache hit can serve authentication without a database read.
// Never expose it through the API.
type cachedUser struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Email          string                  `json:"email"`
	Password       string                  `json:"password,omitempty"`
	Avatar         *entity.FileRef         `json:"avatar,omitempty"`
	Role           string                  `json:"role"`
	IsVerified     bool                    `json:"is_verified"`
	ActivationCode string                  `json:"activation_code,omitempty"`
	Courses        []entity.EnrolledCourse `json:"courses,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

type sessionCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client, ttl time.Duration) repository.SessionCache {
	return &sessionCacheRepository{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (r *sessionCacheRepository) Get(ctx context.Context, userID string) (*entity.User, error) {
	val, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session for user %s from redis: %w", userID, err)
	}

	var cached cachedUser
	if err := json.Unmarshal(val, &cached); err != nil {
		// A corrupt entry is treated as a miss after eviction.
		_ = r.Delete(ctx, userID)
		return nil, nil
	}

	id, err := primitive.ObjectIDFromHex(cached.ID)
	if err != nil {
		_ = r.Delete(ctx, userID)
		return nil, nil
	}

	return &entity.User{
		ID:             id,
		Name:           cached.Name,
		Email:          cached.Email,
		Password:       cached.Password,
		Avatar:         cached.Avatar,
		Role:           cached.Role,
		IsVerified:     cached.IsVerified,
		ActivationCode: cached.ActivationCode,
		Courses:        cached.Courses,
		CreatedAt:      cached.CreatedAt,
		UpdatedAt:      cached.UpdatedAt,
	}, nil
}

func (r *sessionCacheRepository) Set(ctx context.Context, user *entity.User) error {
	if user == nil || user.ID.IsZero() {
		return errors.New("cannot cache nil user or user with empty ID")
	}

	data, err := json.Marshal(cachedUser{
		ID:             user.ID.Hex(),
		Name:           user.Name,
		Email:          user.Email,
		Password:       user.Password,
		Avatar:         user.Avatar,
		Role:           user.Role,
		IsVerified:     user.IsVerified,
		ActivationCode: user.ActivationCode,
		Courses:        user.Courses,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session for user %s: %w", user.ID.Hex(), err)
	}

	if err := r.client.Set(ctx, sessionKey(user.ID.Hex()), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session for user %s to redis: %w", user.ID.Hex(), err)
	}
	return nil
}

func (r *sessionCacheRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session for user %s from redis: %w", userID, err)
	}
	return nil
}
