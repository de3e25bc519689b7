package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

const layoutCollectionName = "layouts"

type layoutRepository struct {
	collection *mongo.Collection
}

func NewLayoutRepository(db *mongo.Database) repository.LayoutRepository {
	return &layoutRepository{collection: db.Collection(layoutCollectionName)}
}

func (r *layoutRepository) Create(ctx context.Context, layout *entity.Layout) (primitive.ObjectID, error) {
	if layout.ID.IsZero() {
		layout.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, layout); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create layout: %w", err)
	}
	return layout.ID, nil
}

func (r *layoutRepository) GetByType(ctx context.Context, layoutType string) (*entity.Layout, error) {
	var layout entity.Layout
	err := r.collection.FindOne(ctx, bson.M{"type": layoutType}).Decode(&layout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get layout by type %s: %w", layoutType, err)
	}
	return &layout, nil
}

func (r *layoutRepository) Update(ctx context.Context, layout *entity.Layout) error {
	update := bson.M{
		"$set": bson.M{
			"banner":     layout.Banner,
			"faq":        layout.FAQ,
			"categories": layout.Categories,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"type": layout.Type}, update)
	if err != nil {
		return fmt.Errorf("failed to update layout %s: %w", layout.Type, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
