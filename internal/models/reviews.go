package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     uuid.UUID          `bson:"user_id" json:"user_id"`
	TargetKind TargetKind         `bson:"target_kind" json:"target_kind" validate:"required,oneof=service event_space event"`
	TargetID   uuid.UUID          `bson:"target_id" json:"target_id"`
	Rating     int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Title      string             `bson:"title" json:"title,omitempty" validate:"max=120"`
	Comment    string             `bson:"comment" json:"comment" validate:"max=2000"`
	Liked      []string           `bson:"liked" json:"liked,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// ReviewSummary is the aggregate shown next to a listing.
type ReviewSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

func Summarize(reviews []*Review) ReviewSummary {
	if len(reviews) == 0 {
		return ReviewSummary{}
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return ReviewSummary{Count: len(reviews), Average: float64(total) / float64(len(reviews))}
}
