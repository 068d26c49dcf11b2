package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/helpers"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ReviewColName = "reviews"

type ReviewsRepo interface {
	CreateReview(ctx context.Context, review *Review) (*Review, error)
	GetReviewsByTarget(ctx context.Context, targetId uuid.UUID) ([]*Review, error)
	GetReviewsByUser(ctx context.Context, userId uuid.UUID) ([]*Review, error)
	DeleteReview(ctx context.Context, userId uuid.UUID, reviewId string) error
}

func (r *Review) BeforeCreate() {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

func (r Review) ValidateReview() error {
	if r.Rating < 1 || r.Rating > 5 {
		return NewValidationError("rating", "rating must be between 1 and 5")
	}
	if r.UserID == uuid.Nil {
		return NewValidationError("user_id", "invalid user ID")
	}
	if r.TargetID == uuid.Nil {
		return NewValidationError("target_id", "invalid target ID")
	}
	return nil
}

func (r *Review) Sanitize() {
	r.Title = helpers.StringTrim(r.Title)
	r.Comment = helpers.RemoveProfanity(helpers.StringTrim(r.Comment))
	r.Liked = helpers.RemoveDuplicates(r.Liked)
}

func (mdb *MongodbRepo) CreateReview(ctx context.Context, review *Review) (*Review, error) {
	review.Sanitize()
	if err := review.ValidateReview(); err != nil {
		return nil, err
	}
	review.BeforeCreate()

	col, err := mdb.GetCollection(ctx, MongoDbName, ReviewColName)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	// one review per user and target
	filter := bson.M{"user_id": review.UserID, "target_id": review.TargetID}
	count, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing reviews: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("review already exists: %w", ErrConflict)
	}

	if _, err := col.InsertOne(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to insert review into database: %w", err)
	}
	return review, nil
}

func (mdb *MongodbRepo) findReviews(ctx context.Context, filter bson.M) ([]*Review, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, ReviewColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (mdb *MongodbRepo) GetReviewsByTarget(ctx context.Context, targetId uuid.UUID) ([]*Review, error) {
	return mdb.findReviews(ctx, bson.M{"target_id": targetId})
}

func (mdb *MongodbRepo) GetReviewsByUser(ctx context.Context, userId uuid.UUID) ([]*Review, error) {
	return mdb.findReviews(ctx, bson.M{"user_id": userId})
}

func (mdb *MongodbRepo) DeleteReview(ctx context.Context, userId uuid.UUID, reviewId string) error {
	oid, err := primitive.ObjectIDFromHex(reviewId)
	if err != nil {
		return NewValidationError("id", "invalid review id")
	}
	col, err := mdb.GetCollection(ctx, MongoDbName, ReviewColName)
	if err != nil {
		return err
	}

	var existing Review
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("review %s: %w", reviewId, ErrNotFound)
		}
		return fmt.Errorf("failed to find review: %w", err)
	}
	if existing.UserID != userId {
		return ErrForbidden
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
