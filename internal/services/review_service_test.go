package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeReviewRepo struct {
	reviews []*models.Review
}

func (r *fakeReviewRepo) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	review.BeforeCreate()
	r.reviews = append(r.reviews, review)
	return review, nil
}

func (r *fakeReviewRepo) GetReviewsByTarget(ctx context.Context, targetId uuid.UUID) ([]*models.Review, error) {
	var out []*models.Review
	for _, rv := range r.reviews {
		if rv.TargetID == targetId {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) GetReviewsByUser(ctx context.Context, userId uuid.UUID) ([]*models.Review, error) {
	var out []*models.Review
	for _, rv := range r.reviews {
		if rv.UserID == userId {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) DeleteReview(ctx context.Context, userId uuid.UUID, reviewId string) error {
	for i, rv := range r.reviews {
		if rv.ID.Hex() == reviewId {
			if rv.UserID != userId {
				return models.ErrForbidden
			}
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func TestReviewsSummaryAndOwnership(t *testing.T) {
	repo := &fakeReviewRepo{}
	rs := NewReviewService(repo)
	ctx := context.Background()
	target := uuid.New()
	ama, kofi := Actor{ID: uuid.New()}, Actor{ID: uuid.New()}

	first, err := rs.CreateReview(ctx, ama, &models.Review{TargetKind: models.TargetService, TargetID: target, Rating: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.UserID != ama.ID || first.ID == primitive.NilObjectID {
		t.Errorf("review not owned by the author: %+v", first)
	}
	if _, err := rs.CreateReview(ctx, kofi, &models.Review{TargetKind: models.TargetService, TargetID: target, Rating: 2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rs.CreateReview(ctx, kofi, &models.Review{TargetKind: models.TargetService, TargetID: target, Rating: 9}); !models.IsValidationError(err) {
		t.Errorf("rating 9 should fail validation, got %v", err)
	}

	got, err := rs.ListByTarget(ctx, target)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.Summary.Count != 2 || got.Summary.Average != 3.5 {
		t.Errorf("unexpected summary %+v", got.Summary)
	}
	if _, err := rs.ListByTarget(ctx, uuid.Nil); !models.IsValidationError(err) {
		t.Errorf("nil target should fail validation, got %v", err)
	}

	if err := rs.DeleteReview(ctx, kofi, first.ID.Hex()); err != models.ErrForbidden {
		t.Errorf("deleting someone else's review should be forbidden, got %v", err)
	}
	if err := rs.DeleteReview(ctx, ama, first.ID.Hex()); err != nil {
		t.Fatalf("delete own review: %v", err)
	}
	mine, _ := rs.ListMine(ctx, ama)
	if len(mine) != 0 {
		t.Errorf("expected no reviews left for the author, got %d", len(mine))
	}
}
