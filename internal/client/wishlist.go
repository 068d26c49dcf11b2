package client

import (
	"context"
	"net/http"

	"github.com/joshua-takyi/evently/internal/models"
)

type WishlistClient struct{ c *Client }

func (w *WishlistClient) List(ctx context.Context) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if _, err := w.c.do(ctx, http.MethodGet, "/wishlist", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Add saves an item and returns the whole wishlist, newest first.
func (w *WishlistClient) Add(ctx context.Context, itemID, itemType string) ([]models.WishlistItem, error) {
	if itemType != models.ItemTypeEvent && itemType != models.ItemTypeService {
		return nil, &ValidationError{Field: "item_type", Message: "item type must be event or service"}
	}
	var items []models.WishlistItem
	body := map[string]string{"item_id": itemID, "item_type": itemType}
	if _, err := w.c.do(ctx, http.MethodPost, "/wishlist", nil, body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (w *WishlistClient) Remove(ctx context.Context, itemID string) error {
	if itemID == "" {
		return errEmptyID
	}
	_, err := w.c.do(ctx, http.MethodDelete, "/wishlist/"+pathEscape(itemID), nil, nil, nil)
	return err
}
