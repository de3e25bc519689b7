package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// FileRef points at an object in the object store together with a
// presigned URL for clients.
type FileRef struct {
	PublicID  string `bson:"public_id" json:"public_id"`
	URL       string `bson:"url" json:"url"`
	ExpiresAt int64  `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

// EnrolledCourse is a single entry of a user's ownership list. Membership
// by course id is the sole authorization mechanism for paid content.
type EnrolledCourse struct {
	CourseID string `json:"courseId"`
}

type User struct {
	ID             primitive.ObjectID
	Name           string
	Email          string
	Password       string // bcrypt hash; empty for social-auth accounts
	Avatar         *FileRef
	Role           string
	IsVerified     bool
	ActivationCode string // present only while activation is pending
	Courses        []EnrolledCourse
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasPassword reports whether the account carries a local credential.
// Social-auth accounts do not.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// Owns reports whether the user's enrollment list contains the course.
func (u *User) Owns(courseID string) bool {
	for _, c := range u.Courses {
		if c.CourseID == courseID {
			return true
		}
	}
	return false
}
