package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

type ReviewsClient struct{ c *Client }

type TargetReviews struct {
	Reviews []*models.Review     `json:"reviews"`
	Summary models.ReviewSummary `json:"summary"`
}

func (r *ReviewsClient) ForTarget(ctx context.Context, targetID uuid.UUID) (*TargetReviews, error) {
	var out TargetReviews
	if _, err := r.c.do(ctx, http.MethodGet, "/reviews/target/"+targetID.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ReviewsClient) Mine(ctx context.Context) ([]*models.Review, error) {
	var reviews []*models.Review
	if _, err := r.c.do(ctx, http.MethodGet, "/reviews/mine", nil, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewsClient) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}
	var created models.Review
	if _, err := r.c.do(ctx, http.MethodPost, "/reviews", nil, review, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ReviewsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyID
	}
	_, err := r.c.do(ctx, http.MethodDelete, "/reviews/"+pathEscape(id), nil, nil, nil)
	return err
}
