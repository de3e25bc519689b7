package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
)

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Course, error)
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context) ([]*entity.Course, error)
	// IncrementPurchased bumps the purchase counter by one. The enrollment
	// ledger is the only caller.
	IncrementPurchased(ctx context.Context, id primitive.ObjectID) error
	// PushReview appends a review and stores the recomputed running average.
	PushReview(ctx context.Context, id primitive.ObjectID, review entity.Review, ratings float64) error
	// ReplaceCourseData rewrites the content sections, used for Q&A updates.
	ReplaceCourseData(ctx context.Context, id primitive.ObjectID, data []entity.CourseData) error
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}
