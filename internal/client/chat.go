package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

type ConversationsClient struct{ c *Client }

func (cc *ConversationsClient) Open(ctx context.Context, with uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if _, err := cc.c.do(ctx, http.MethodPost, "/conversations", nil, map[string]string{"user_id": with.String()}, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (cc *ConversationsClient) List(ctx context.Context) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	if _, err := cc.c.do(ctx, http.MethodGet, "/conversations", nil, nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (cc *ConversationsClient) Messages(ctx context.Context, roomID string, opts ListOptions) ([]*models.Message, error) {
	if roomID == "" {
		return nil, errEmptyID
	}
	var msgs []*models.Message
	if _, err := cc.c.do(ctx, http.MethodGet, "/conversations/"+pathEscape(roomID)+"/messages", opts.values(), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (cc *ConversationsClient) Send(ctx context.Context, to uuid.UUID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: "text", Message: "message cannot be empty"}
	}
	var msg models.Message
	body := map[string]string{"receiver_id": to.String(), "text": text}
	if _, err := cc.c.do(ctx, http.MethodPost, "/messages", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (cc *ConversationsClient) UpdateStatus(ctx context.Context, messageID string, status models.MessageStatus) (*models.Message, error) {
	if messageID == "" {
		return nil, errEmptyID
	}
	var msg models.Message
	body := map[string]string{"status": string(status)}
	if _, err := cc.c.do(ctx, http.MethodPatch, "/messages/"+pathEscape(messageID)+"/status", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
