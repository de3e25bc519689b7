package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) (primitive.ObjectID, error)
	// List returns all notifications, newest first.
	List(ctx context.Context) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteReadOlderThan removes read notifications created before the
	// cutoff. Returns the number of deleted documents.
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
