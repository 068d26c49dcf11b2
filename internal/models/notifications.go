package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const NotificationColName = "notifications"

type NotificationType string

const (
	NotifyBookingRequest   NotificationType = "booking_request"
	NotifyBookingResponse  NotificationType = "booking_response"
	NotifyBookingCancelled NotificationType = "booking_cancelled"
	NotifyNewMessage       NotificationType = "new_message"
	NotifyPaymentReceived  NotificationType = "payment_received"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    uuid.UUID          `bson:"user_id" json:"user_id"`
	Type      NotificationType   `bson:"type" json:"type"`
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	Data      map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *Notification) (*Notification, error)
	ListNotifications(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*Notification, int, error)
	CountUnread(ctx context.Context, userId uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userId uuid.UUID, id string) error
	MarkAllRead(ctx context.Context, userId uuid.UUID) (int, error)
	DeleteNotification(ctx context.Context, userId uuid.UUID, id string) error
}

func (mdb *MongodbRepo) CreateNotification(ctx context.Context, n *Notification) (*Notification, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, NotificationColName)
	if err != nil {
		return nil, err
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, err := col.InsertOne(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return n, nil
}

func (mdb *MongodbRepo) ListNotifications(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*Notification, int, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, NotificationColName)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{"user_id": userId}
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	out := []*Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return out, int(total), nil
}

func (mdb *MongodbRepo) CountUnread(ctx context.Context, userId uuid.UUID) (int, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, NotificationColName)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, bson.M{"user_id": userId, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return int(n), nil
}

func (mdb *MongodbRepo) MarkRead(ctx context.Context, userId uuid.UUID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return NewValidationError("id", "invalid notification id")
	}
	col, err := mdb.GetCollection(ctx, MongoDbName, NotificationColName)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": oid, "user_id": userId}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) MarkAllRead(ctx context.Context, userId uuid.UUID) (int, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, NotificationColName)
	if err != nil {
		return 0, err
	}
	res, err := col.UpdateMany(ctx, bson.M{"user_id": userId, "read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(res.ModifiedCount), nil
}

func (mdb *MongodbRepo) DeleteNotification(ctx context.Context, userId uuid.UUID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return NewValidationError("id", "invalid notification id")
	}
	col, err := mdb.GetCollection(ctx, MongoDbName, NotificationColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userId})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}
