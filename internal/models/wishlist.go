package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const WishlistColName = "wishlist"

const (
	ItemTypeEvent   = "event"
	ItemTypeService = "service"
)

type WishlistItem struct {
	ItemID   string    `bson:"item_id" json:"item_id"`
	ItemType string    `bson:"item_type" json:"item_type"`
	AddedAt  time.Time `bson:"added_at" json:"added_at"`
}

// Wishlist is one document per user, items keyed by item id.
type Wishlist struct {
	ID        primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	UserID    uuid.UUID               `bson:"user_id" json:"user_id" validate:"required"`
	Items     map[string]WishlistItem `bson:"items" json:"items"`
	CreatedAt time.Time               `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time               `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// SortedItems returns items newest first.
func (w *Wishlist) SortedItems() []WishlistItem {
	items := make([]WishlistItem, 0, len(w.Items))
	for _, item := range w.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.After(items[j].AddedAt) })
	return items
}

type WishlistRepo interface {
	AddToWishlist(ctx context.Context, userId uuid.UUID, itemId string, itemType string) (*Wishlist, error)
	RemoveFromWishlist(ctx context.Context, userId uuid.UUID, itemId string) error
	GetWishlist(ctx context.Context, userId uuid.UUID) (*Wishlist, error)
}

func (mdb *MongodbRepo) AddToWishlist(ctx context.Context, userId uuid.UUID, itemId string, itemType string) (*Wishlist, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, WishlistColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	now := time.Now()
	filter := bson.M{"user_id": userId}

	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
			fmt.Sprintf("items.%s", itemId): WishlistItem{
				ItemID:   itemId,
				ItemType: itemType,
				AddedAt:  now,
			},
		},
		"$setOnInsert": bson.M{
			"user_id":    userId,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Wishlist
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting wishlist: %v", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) RemoveFromWishlist(ctx context.Context, userId uuid.UUID, itemId string) error {
	col, err := mdb.GetCollection(ctx, MongoDbName, WishlistColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$unset": bson.M{fmt.Sprintf("items.%s", itemId): ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	_, err = col.UpdateOne(ctx, bson.M{"user_id": userId}, update)
	return err
}

func (mdb *MongodbRepo) GetWishlist(ctx context.Context, userId uuid.UUID) (*Wishlist, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, WishlistColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var wishlist Wishlist
	err = col.FindOne(ctx, bson.M{"user_id": userId}).Decode(&wishlist)
	if err == mongo.ErrNoDocuments {
		return &Wishlist{UserID: userId, Items: map[string]WishlistItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding wishlist: %v", err)
	}
	if wishlist.Items == nil {
		wishlist.Items = map[string]WishlistItem{}
	}
	return &wishlist, nil
}
