package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
)

// OrderRepository is the enrollment ledger's durable side. A unique compound
// index on (user_id, course_id) makes double-enrollment fail at the storage
// layer; Create surfaces that as ErrDuplicateOrder.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (primitive.ObjectID, error)
	// Delete removes an order row. Used to compensate when a follow-up
	// write of the enrollment flow fails after the insert.
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context) ([]*entity.Order, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}
