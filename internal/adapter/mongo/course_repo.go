package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

const courseCollectionName = "courses"

type courseRepository struct {
	collection *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) repository.CourseRepository {
	return &courseRepository{collection: db.Collection(courseCollectionName)}
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) (primitive.ObjectID, error) {
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, course); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create course: %w", err)
	}
	return course.ID, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Course, error) {
	var course entity.Course
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course by ID %s: %w", id.Hex(), err)
	}
	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	course.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":            course.Name,
			"description":     course.Description,
			"price":           course.Price,
			"estimated_price": course.EstimatedPrice,
			"thumbnail":       course.Thumbnail,
			"tags":            course.Tags,
			"level":           course.Level,
			"demo_url":        course.DemoURL,
			"benefits":        course.Benefits,
			"prerequisites":   course.Prerequisites,
			"course_data":     course.CourseData,
			"updated_at":      course.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": course.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update course %s: %w", course.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete course %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *courseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer cursor.Close(ctx)

	var courses []*entity.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("failed to decode listed courses: %w", err)
	}
	return courses, nil
}

func (r *courseRepository) IncrementPurchased(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"purchased": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to increment purchase count for course %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *courseRepository) PushReview(ctx context.Context, id primitive.ObjectID, review entity.Review, ratings float64) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"reviews": review},
		"$set": bson.M{
			"ratings":    ratings,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to push review to course %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *courseRepository) ReplaceCourseData(ctx context.Context, id primitive.ObjectID, data []entity.CourseData) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"course_data": data,
			"updated_at":  time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to replace content sections for course %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}

func (r *courseRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"created_at": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count courses by creation window: %w", err)
	}
	return count, nil
}
