package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is the durable receipt of one enrollment event. It does not gate
// access by itself; the owning user's Courses list does.
type Order struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	CourseID    string                 `bson:"course_id" json:"courseId"`
	UserID      string                 `bson:"user_id" json:"userId"`
	PaymentInfo map[string]interface{} `bson:"payment_info,omitempty" json:"paymentInfo,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"createdAt"`
}
