package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelExpert       = "Expert"
)

// Comment is a Q&A entry attached to a content section. Replies reuse the
// same shape, nested one level at a time.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	Question  string             `bson:"question" json:"question"`
	Replies   []Comment          `bson:"replies,omitempty" json:"replies,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	Rating    float64            `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// CourseData is one content section of a course.
type CourseData struct {
	Title          string    `bson:"title" json:"title"`
	Description    string    `bson:"description" json:"description"`
	VideoSection   string    `bson:"video_section" json:"videoSection"`
	Video          *FileRef  `bson:"video,omitempty" json:"video,omitempty"`
	VideoLength    int       `bson:"video_length" json:"videoLength"`
	VideoPlayerURL string    `bson:"video_player_url,omitempty" json:"videoPlayerUrl,omitempty"`
	Suggestions    []string  `bson:"suggestions,omitempty" json:"suggestions,omitempty"`
	Questions      []Comment `bson:"questions,omitempty" json:"questions,omitempty"`
}

type TitleItem struct {
	Title string `bson:"title" json:"title"`
}

type Course struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Price          float64            `bson:"price" json:"price"`
	EstimatedPrice float64            `bson:"estimated_price,omitempty" json:"estimatedPrice,omitempty"`
	Thumbnail      *FileRef           `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Tags           []string           `bson:"tags" json:"tags"`
	Level          string             `bson:"level" json:"level"`
	DemoURL        string             `bson:"demo_url,omitempty" json:"demoUrl,omitempty"`
	Benefits       []TitleItem        `bson:"benefits,omitempty" json:"benefits,omitempty"`
	Prerequisites  []TitleItem        `bson:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	Reviews        []Review           `bson:"reviews,omitempty" json:"reviews,omitempty"`
	CourseData     []CourseData       `bson:"course_data,omitempty" json:"courseData,omitempty"`
	Ratings        float64            `bson:"ratings" json:"ratings"`
	Purchased      int64              `bson:"purchased" json:"purchased"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Sanitized returns a copy safe for unauthenticated catalog reads: section
// titles survive, playable content and discussion threads do not.
func (c *Course) Sanitized() *Course {
	out := *c
	out.CourseData = make([]CourseData, len(c.CourseData))
	for i, cd := range c.CourseData {
		out.CourseData[i] = CourseData{
			Title:        cd.Title,
			Description:  cd.Description,
			VideoSection: cd.VideoSection,
			VideoLength:  cd.VideoLength,
		}
	}
	return &out
}
