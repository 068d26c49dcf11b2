package store

import (
	"context"
	"sync"

	"github.com/joshua-takyi/evently/internal/client"
	"github.com/joshua-takyi/evently/internal/models"
)

type WishlistStore struct {
	api *client.Client

	mu      sync.RWMutex
	items   []models.WishlistItem
	version uint64
	gen     generation
	subs    subscribers[[]models.WishlistItem]
}

func NewWishlistStore(api *client.Client) *WishlistStore {
	return &WishlistStore{api: api}
}

func (w *WishlistStore) Subscribe(fn func([]models.WishlistItem)) func() { return w.subs.add(fn) }

// Items returns a copy, newest first.
func (w *WishlistStore) Items() []models.WishlistItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.WishlistItem(nil), w.items...)
}

func (w *WishlistStore) Contains(itemID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, it := range w.items {
		if it.ItemID == itemID {
			return true
		}
	}
	return false
}

func (w *WishlistStore) replace(items []models.WishlistItem) {
	w.mutate(func(cur []models.WishlistItem) []models.WishlistItem {
		return append([]models.WishlistItem(nil), items...)
	})
}

// mutate applies fn to the items and tells subscribers about the result.
func (w *WishlistStore) mutate(fn func([]models.WishlistItem) []models.WishlistItem) {
	w.mu.Lock()
	w.items = fn(w.items)
	w.version++
	seq := w.version
	snap := append([]models.WishlistItem(nil), w.items...)
	w.mu.Unlock()
	w.subs.publish(seq, snap)
}

func (w *WishlistStore) Fetch(ctx context.Context) error {
	n := w.gen.begin()
	items, err := w.api.Wishlist.List(ctx)
	if err != nil {
		return err
	}
	if w.gen.commit(n) {
		w.replace(items)
	}
	return nil
}

func (w *WishlistStore) Add(ctx context.Context, itemID, itemType string) error {
	n := w.gen.begin()
	items, err := w.api.Wishlist.Add(ctx, itemID, itemType)
	if err != nil {
		return err
	}
	if w.gen.commit(n) {
		w.replace(items)
	}
	return nil
}

func (w *WishlistStore) Remove(ctx context.Context, itemID string) error {
	if err := w.api.Wishlist.Remove(ctx, itemID); err != nil {
		return err
	}
	w.mutate(func(cur []models.WishlistItem) []models.WishlistItem {
		kept := cur[:0:0]
		for _, it := range cur {
			if it.ItemID != itemID {
				kept = append(kept, it)
			}
		}
		return kept
	})
	return nil
}

// Toggle adds the item when missing and removes it otherwise.
func (w *WishlistStore) Toggle(ctx context.Context, itemID, itemType string) (bool, error) {
	if w.Contains(itemID) {
		return false, w.Remove(ctx, itemID)
	}
	return true, w.Add(ctx, itemID, itemType)
}

// Reset drops local state, e.g. on sign-out.
func (w *WishlistStore) Reset() {
	w.gen.invalidate()
	w.replace(nil)
}
