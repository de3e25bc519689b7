package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

const userCollectionName = "users"

type mongoFileRef struct {
	PublicID  string `bson:"public_id"`
	URL       string `bson:"url"`
	ExpiresAt int64  `bson:"expires_at,omitempty"`
}

type mongoEnrolledCourse struct {
	CourseID string `bson:"course_id"`
}

type mongoUser struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty"`
	Name           string                `bson:"name"`
	Email          string                `bson:"email"`
	Password       string                `bson:"password,omitempty"`
	Avatar         *mongoFileRef         `bson:"avatar,omitempty"`
	Role           string                `bson:"role"`
	IsVerified     bool                  `bson:"is_verified"`
	ActivationCode string                `bson:"activation_code,omitempty"`
	Courses        []mongoEnrolledCourse `bson:"courses,omitempty"`
	CreatedAt      time.Time             `bson:"created_at"`
	UpdatedAt      time.Time             `bson:"updated_at"`
}

func (m *mongoUser) toEntity() *entity.User {
	u := &entity.User{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Password:       m.Password,
		Role:           m.Role,
		IsVerified:     m.IsVerified,
		ActivationCode: m.ActivationCode,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Avatar != nil {
		u.Avatar = &entity.FileRef{
			PublicID:  m.Avatar.PublicID,
			URL:       m.Avatar.URL,
			ExpiresAt: m.Avatar.ExpiresAt,
		}
	}
	for _, c := range m.Courses {
		u.Courses = append(u.Courses, entity.EnrolledCourse{CourseID: c.CourseID})
	}
	return u
}

func fromEntity(e *entity.User) *mongoUser {
	m := &mongoUser{
		ID:             e.ID,
		Name:           e.Name,
		Email:          e.Email,
		Password:       e.Password,
		Role:           e.Role,
		IsVerified:     e.IsVerified,
		ActivationCode: e.ActivationCode,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if e.Avatar != nil {
		m.Avatar = &mongoFileRef{
			PublicID:  e.Avatar.PublicID,
			URL:       e.Avatar.URL,
			ExpiresAt: e.Avatar.ExpiresAt,
		}
	}
	for _, c := range e.Courses {
		m.Courses = append(m.Courses, mongoEnrolledCourse{CourseID: c.CourseID})
	}
	return m
}

type userRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewUserRepository(db *mongo.Database, log logger.Logger) repository.UserRepository {
	collection := db.Collection(userCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Warnf("failed to ensure unique email index (may already exist): %v", err)
	}

	return &userRepository{collection: collection, log: log}
}

// secretsProjection hides credential material from general reads.
var secretsProjection = bson.M{"password": 0, "activation_code": 0}

func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isDuplicateKey(err error) bool {
	var writeException mongo.WriteException
	if errors.As(err, &writeException) {
		for _, writeError := range writeException.WriteErrors {
			if writeError.Code == 11000 {
				return true
			}
		}
	}
	return mongo.IsDuplicateKeyError(err)
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error) {
	dbUser := fromEntity(user)
	dbUser.Email = canonicalEmail(user.Email)

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("failed to hash password: %w", err)
		}
		dbUser.Password = string(hashed)
	}

	if dbUser.ID.IsZero() {
		dbUser.ID = primitive.NewObjectID()
	}
	if dbUser.Role == "" {
		dbUser.Role = entity.RoleUser
	}
	now := time.Now().UTC()
	dbUser.CreatedAt = now
	dbUser.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, dbUser); err != nil {
		if isDuplicateKey(err) {
			r.log.Warnf("duplicate email on user create: %s", dbUser.Email)
			return primitive.NilObjectID, repository.ErrDuplicateEmail
		}
		return primitive.NilObjectID, fmt.Errorf("failed to create user: %w", err)
	}
	return dbUser.ID, nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	var dbUser mongoUser
	err := r.collection.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(secretsProjection)).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id.Hex(), err)
	}
	return dbUser.toEntity(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var dbUser mongoUser
	err := r.collection.FindOne(ctx, bson.M{"email": canonicalEmail(email)},
		options.FindOne().SetProjection(secretsProjection)).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return dbUser.toEntity(), nil
}

func (r *userRepository) GetByEmailWithSecrets(ctx context.Context, email string) (*entity.User, error) {
	var dbUser mongoUser
	err := r.collection.FindOne(ctx, bson.M{"email": canonicalEmail(email)}).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return dbUser.toEntity(), nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	set := bson.M{
		"name":       user.Name,
		"email":      canonicalEmail(user.Email),
		"updated_at": time.Now().UTC(),
	}
	if user.Avatar != nil {
		set["avatar"] = mongoFileRef{
			PublicID:  user.Avatar.PublicID,
			URL:       user.Avatar.URL,
			ExpiresAt: user.Avatar.ExpiresAt,
		}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set})
	if err != nil {
		if isDuplicateKey(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, newPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password":   string(hashed),
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update password for user %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) SetActivationCode(ctx context.Context, id primitive.ObjectID, code string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"activation_code": code,
			"updated_at":      time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set activation code for user %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"is_verified": true,
			"updated_at":  time.Now().UTC(),
		},
		"$unset": bson.M{"activation_code": ""},
	})
	if err != nil {
		return fmt.Errorf("failed to mark user %s verified: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"role":       role,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update role for user %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) AddCourse(ctx context.Context, id primitive.ObjectID, courseID string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"courses": mongoEnrolledCourse{CourseID: courseID}},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to add course %s to user %s: %w", courseID, id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	findOptions := options.Find().
		SetProjection(secretsProjection).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var dbUsers []*mongoUser
	if err := cursor.All(ctx, &dbUsers); err != nil {
		return nil, fmt.Errorf("failed to decode listed users: %w", err)
	}

	users := make([]*entity.User, 0, len(dbUsers))
	for _, dbUser := range dbUsers {
		users = append(users, dbUser.toEntity())
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return count, nil
}

func (r *userRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"created_at": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count users by creation window: %w", err)
	}
	return count, nil
}
