package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
)

type ChatService struct {
	repo    models.ChatRepo
	emitter realtime.Emitter
	logger  *slog.Logger
}

func NewChatService(repo models.ChatRepo, emitter realtime.Emitter, logger *slog.Logger) *ChatService {
	if emitter == nil {
		emitter = realtime.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{repo: repo, emitter: emitter, logger: logger}
}

func (cs *ChatService) OpenConversation(ctx context.Context, actor Actor, otherID uuid.UUID) (*models.Conversation, error) {
	if otherID == uuid.Nil || otherID == actor.ID {
		return nil, models.NewValidationError("participant_id", "choose someone else to chat with")
	}
	return cs.repo.UpsertConversation(ctx, actor.ID, otherID)
}

func (cs *ChatService) ListConversations(ctx context.Context, actor Actor) ([]*models.Conversation, error) {
	return cs.repo.ListConversations(ctx, actor.ID)
}

func (cs *ChatService) conversationFor(ctx context.Context, actor Actor, roomID string) (*models.Conversation, error) {
	conv, err := cs.repo.GetConversation(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(actor.ID) {
		return nil, models.ErrForbidden
	}
	return conv, nil
}

func (cs *ChatService) ListMessages(ctx context.Context, actor Actor, roomID string, offset, limit int) ([]*models.Message, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	if _, err := cs.conversationFor(ctx, actor, roomID); err != nil {
		return nil, err
	}
	return cs.repo.ListMessages(ctx, roomID, offset, limit)
}

// SendMessage stores a message to receiverID and pushes it to them.
func (cs *ChatService) SendMessage(ctx context.Context, actor Actor, receiverID uuid.UUID, text string) (*models.Message, error) {
	text = helpers.StringTrim(text)
	if text == "" {
		return nil, models.NewValidationError("text", "message cannot be empty")
	}
	conv, err := cs.OpenConversation(ctx, actor, receiverID)
	if err != nil {
		return nil, err
	}
	msg := &models.Message{
		RoomID:     conv.RoomID,
		SenderID:   actor.ID,
		ReceiverID: receiverID,
		Text:       text,
		Status:     models.MessageSent,
	}
	if err := models.Validate.Struct(msg); err != nil {
		return nil, models.NewValidationError("text", err.Error())
	}
	saved, err := cs.repo.SaveMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	cs.emit(receiverID, realtime.EventReceiveMessage, realtime.ReceiveMessage{Message: saved})
	return saved, nil
}

// UpdateStatus moves a received message forward to delivered or read. Only the
// receiver may do this and the sender is told about it.
func (cs *ChatService) UpdateStatus(ctx context.Context, actor Actor, messageID string, status string) (*models.Message, error) {
	next, err := models.ParseMessageStatus(status)
	if err != nil {
		return nil, err
	}
	msg, err := cs.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverID != actor.ID {
		return nil, models.ErrForbidden
	}
	if !msg.Status.Upgrades(next) {
		return msg, nil
	}
	updated, err := cs.repo.UpdateMessageStatus(ctx, messageID, next)
	if err != nil {
		return nil, err
	}
	cs.emit(updated.SenderID, realtime.EventMessageStatusUpdate, realtime.MessageStatusUpdate{
		MessageID: messageID,
		RoomID:    updated.RoomID,
		Status:    updated.Status,
	})
	return updated, nil
}

func (cs *ChatService) emit(userID uuid.UUID, event string, payload interface{}) {
	if err := cs.emitter.EmitToUser(userID.String(), event, payload); err != nil {
		cs.logger.Warn("Failed to emit realtime event", "event", event, "user_id", userID, "error", err)
	}
}
