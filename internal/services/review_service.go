package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

type ReviewService struct {
	reviewsRepo models.ReviewsRepo
}

func NewReviewService(reviewsRepo models.ReviewsRepo) *ReviewService {
	return &ReviewService{reviewsRepo: reviewsRepo}
}

func (rs *ReviewService) CreateReview(ctx context.Context, actor Actor, review *models.Review) (*models.Review, error) {
	review.UserID = actor.ID
	if err := models.Validate.Struct(review); err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	return rs.reviewsRepo.CreateReview(ctx, review)
}

// TargetReviews is the review list of a listing with its aggregate.
type TargetReviews struct {
	Reviews []*models.Review     `json:"reviews"`
	Summary models.ReviewSummary `json:"summary"`
}

func (rs *ReviewService) ListByTarget(ctx context.Context, targetID uuid.UUID) (*TargetReviews, error) {
	if targetID == uuid.Nil {
		return nil, models.NewValidationError("target_id", "invalid target ID")
	}
	reviews, err := rs.reviewsRepo.GetReviewsByTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &TargetReviews{Reviews: reviews, Summary: models.Summarize(reviews)}, nil
}

func (rs *ReviewService) ListMine(ctx context.Context, actor Actor) ([]*models.Review, error) {
	return rs.reviewsRepo.GetReviewsByUser(ctx, actor.ID)
}

func (rs *ReviewService) DeleteReview(ctx context.Context, actor Actor, id string) error {
	return rs.reviewsRepo.DeleteReview(ctx, actor.ID, id)
}
