package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
)

// UserRepository is the credential store. Implementations hash the password
// before persisting; entities read back through the default methods never
// carry the password hash or the activation code.
type UserRepository interface {
	// Create persists a new user. user.Password is expected in plaintext
	// and is hashed before the write. Returns ErrDuplicateEmail when the
	// canonicalized email is already taken.
	Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByEmailWithSecrets includes the password hash and activation code.
	// Used only by login and the activation workflow.
	GetByEmailWithSecrets(ctx context.Context, email string) (*entity.User, error)
	// UpdateProfile writes name, email and avatar.
	UpdateProfile(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, newPassword string) error
	SetActivationCode(ctx context.Context, id primitive.ObjectID, code string) error
	// MarkVerified flips the account to verified and clears the stored
	// activation code.
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
	// AddCourse appends the course id to the user's enrollment list if not
	// already present.
	AddCourse(ctx context.Context, id primitive.ObjectID, courseID string) error
	List(ctx context.Context) ([]*entity.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByRole(ctx context.Context, role string) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}
