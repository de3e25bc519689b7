package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

const orderCollectionName = "orders"

type orderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository ensures a unique compound index on (user_id, course_id)
// so a user can hold at most one order per course.
func NewOrderRepository(db *mongo.Database, log logger.Logger) repository.OrderRepository {
	collection := db.Collection(orderCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Warnf("failed to ensure unique order index (may already exist): %v", err)
	}

	return &orderRepository{collection: collection}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) (primitive.ObjectID, error) {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		if isDuplicateKey(err) {
			return primitive.NilObjectID, repository.ErrDuplicateOrder
		}
		return primitive.NilObjectID, fmt.Errorf("failed to create order: %w", err)
	}
	return order.ID, nil
}

func (r *orderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context) ([]*entity.Order, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*entity.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode listed orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *orderRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"created_at": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders by creation window: %w", err)
	}
	return count, nil
}
