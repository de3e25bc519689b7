package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LayoutBanner     = "banner"
	LayoutFAQ        = "faq"
	LayoutCategories = "categories"
)

type Banner struct {
	Image    FileRef `bson:"image" json:"image"`
	Title    string  `bson:"title" json:"title"`
	SubTitle string  `bson:"sub_title" json:"subTitle"`
}

type FAQItem struct {
	Question string `bson:"question" json:"question"`
	Answer   string `bson:"answer" json:"answer"`
}

// Layout is a singleton-per-type document driving site content: the home
// banner, the FAQ page or the category list.
type Layout struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Type       string             `bson:"type" json:"type"`
	Banner     *Banner            `bson:"banner,omitempty" json:"banner,omitempty"`
	FAQ        []FAQItem          `bson:"faq,omitempty" json:"faq,omitempty"`
	Categories []TitleItem        `bson:"categories,omitempty" json:"categories,omitempty"`
}
