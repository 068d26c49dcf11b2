package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

type WishlistService struct {
	wishlistRepo models.WishlistRepo
}

func NewWishlistService(wishlistRepo models.WishlistRepo) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
	}
}

func (ws *WishlistService) AddToWishlist(ctx context.Context, userId uuid.UUID, itemId string, itemType string) (*models.Wishlist, error) {
	if userId == uuid.Nil {
		return nil, models.NewValidationError("user_id", "invalid user ID")
	}
	if _, err := uuid.Parse(strings.TrimSpace(itemId)); err != nil {
		return nil, models.NewValidationError("item_id", "item ID must be a valid UUID")
	}
	if itemType != models.ItemTypeEvent && itemType != models.ItemTypeService {
		return nil, models.NewValidationError("item_type", "item type must be either 'event' or 'service'")
	}
	return ws.wishlistRepo.AddToWishlist(ctx, userId, strings.TrimSpace(itemId), itemType)
}

func (ws *WishlistService) RemoveFromWishlist(ctx context.Context, userId uuid.UUID, itemId string) error {
	if userId == uuid.Nil {
		return models.NewValidationError("user_id", "invalid user ID")
	}
	if strings.TrimSpace(itemId) == "" {
		return models.NewValidationError("item_id", "item ID cannot be empty")
	}
	return ws.wishlistRepo.RemoveFromWishlist(ctx, userId, strings.TrimSpace(itemId))
}

func (ws *WishlistService) GetWishlist(ctx context.Context, userId uuid.UUID) ([]models.WishlistItem, error) {
	if userId == uuid.Nil {
		return nil, models.NewValidationError("user_id", "invalid user ID")
	}
	w, err := ws.wishlistRepo.GetWishlist(ctx, userId)
	if err != nil {
		return nil, err
	}
	return w.SortedItems(), nil
}
