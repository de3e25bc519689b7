package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
)

type LayoutRepository interface {
	Create(ctx context.Context, layout *entity.Layout) (primitive.ObjectID, error)
	GetByType(ctx context.Context, layoutType string) (*entity.Layout, error)
	Update(ctx context.Context, layout *entity.Layout) error
}
