package models

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ConversationColName = "conversations"
	MessageColName      = "messages"
)

type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

func (s MessageStatus) rank() int {
	switch s {
	case MessageSent:
		return 1
	case MessageDelivered:
		return 2
	case MessageRead:
		return 3
	}
	return 0
}

// ParseMessageStatus accepts "received" as a synonym for delivered.
func ParseMessageStatus(s string) (MessageStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sent":
		return MessageSent, nil
	case "delivered", "received":
		return MessageDelivered, nil
	case "read":
		return MessageRead, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown message status %q", s))
}

// Upgrades reports whether moving from s to next goes forward. Status never goes back.
func (s MessageStatus) Upgrades(next MessageStatus) bool {
	return next.rank() > s.rank()
}

// RoomID joins two participants; the order of a and b does not matter.
func RoomID(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return ids[0] + "_" + ids[1]
}

type Conversation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID       string             `bson:"room_id" json:"room_id"`
	Participants []uuid.UUID        `bson:"participants" json:"participants"`
	LastMessage  string             `bson:"last_message,omitempty" json:"last_message,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Other returns the participant that is not me.
func (c *Conversation) Other(me uuid.UUID) uuid.UUID {
	for _, p := range c.Participants {
		if p != me {
			return p
		}
	}
	return uuid.Nil
}

func (c *Conversation) HasParticipant(id uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID     string             `bson:"room_id" json:"room_id"`
	SenderID   uuid.UUID          `bson:"sender_id" json:"sender_id"`
	ReceiverID uuid.UUID          `bson:"receiver_id" json:"receiver_id"`
	Text       string             `bson:"text" json:"text" validate:"required,max=4000"`
	Status     MessageStatus      `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"timestamp"`
}

type ChatRepo interface {
	UpsertConversation(ctx context.Context, a, b uuid.UUID) (*Conversation, error)
	GetConversation(ctx context.Context, roomId string) (*Conversation, error)
	ListConversations(ctx context.Context, userId uuid.UUID) ([]*Conversation, error)
	SaveMessage(ctx context.Context, msg *Message) (*Message, error)
	ListMessages(ctx context.Context, roomId string, offset, limit int) ([]*Message, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	// UpdateMessageStatus only moves status forward; it returns the stored message.
	UpdateMessageStatus(ctx context.Context, id string, status MessageStatus) (*Message, error)
}

func (mdb *MongodbRepo) UpsertConversation(ctx context.Context, a, b uuid.UUID) (*Conversation, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, ConversationColName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	room := RoomID(a, b)
	update := bson.M{
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"room_id":      room,
			"participants": []uuid.UUID{a, b},
			"created_at":   now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var conv Conversation
	if err := col.FindOneAndUpdate(ctx, bson.M{"room_id": room}, update, opts).Decode(&conv); err != nil {
		return nil, fmt.Errorf("failed to upsert conversation: %w", err)
	}
	return &conv, nil
}

func (mdb *MongodbRepo) GetConversation(ctx context.Context, roomId string) (*Conversation, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, ConversationColName)
	if err != nil {
		return nil, err
	}
	var conv Conversation
	if err := col.FindOne(ctx, bson.M{"room_id": roomId}).Decode(&conv); err != nil {
		return nil, fmt.Errorf("conversation %s: %w", roomId, ErrNotFound)
	}
	return &conv, nil
}

func (mdb *MongodbRepo) ListConversations(ctx context.Context, userId uuid.UUID) ([]*Conversation, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, ConversationColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"participants": userId}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversations: %w", err)
	}
	defer cursor.Close(ctx)

	out := []*Conversation{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return out, nil
}

func (mdb *MongodbRepo) SaveMessage(ctx context.Context, msg *Message) (*Message, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, MessageColName)
	if err != nil {
		return nil, err
	}
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.Status == "" {
		msg.Status = MessageSent
	}
	if _, err := col.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	convs, err := mdb.GetCollection(ctx, MongoDbName, ConversationColName)
	if err != nil {
		return nil, err
	}
	_, err = convs.UpdateOne(ctx, bson.M{"room_id": msg.RoomID}, bson.M{
		"$set": bson.M{"last_message": msg.Text, "updated_at": msg.CreatedAt},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return msg, nil
}

func (mdb *MongodbRepo) ListMessages(ctx context.Context, roomId string, offset, limit int) ([]*Message, error) {
	col, err := mdb.GetCollection(ctx, MongoDbName, MessageColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, bson.M{"room_id": roomId}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	out := []*Message{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return out, nil
}

func (mdb *MongodbRepo) GetMessage(ctx context.Context, id string) (*Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, NewValidationError("id", "invalid message id")
	}
	col, err := mdb.GetCollection(ctx, MongoDbName, MessageColName)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&msg); err != nil {
		return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	return &msg, nil
}

func (mdb *MongodbRepo) UpdateMessageStatus(ctx context.Context, id string, status MessageStatus) (*Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, NewValidationError("id", "invalid message id")
	}
	col, err := mdb.GetCollection(ctx, MongoDbName, MessageColName)
	if err != nil {
		return nil, err
	}

	// only statuses that rank below the new one may be replaced
	var lower []MessageStatus
	for _, s := range []MessageStatus{MessageSent, MessageDelivered, MessageRead} {
		if s.Upgrades(status) {
			lower = append(lower, s)
		}
	}
	if len(lower) > 0 {
		_, err = col.UpdateOne(ctx,
			bson.M{"_id": oid, "status": bson.M{"$in": lower}},
			bson.M{"$set": bson.M{"status": status}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update message status: %w", err)
		}
	}
	return mdb.GetMessage(ctx, id)
}
