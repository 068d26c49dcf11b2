package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
)

func TestSendMessageAndStatusUpgrades(t *testing.T) {
	repo := newFakeChatRepo()
	emitter := &recordingEmitter{}
	cs := NewChatService(repo, emitter, nil)
	ctx := context.Background()
	alice, bob := Actor{ID: uuid.New()}, Actor{ID: uuid.New()}

	msg, err := cs.SendMessage(ctx, alice, bob.ID, "  is the hall free on friday?  ")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Text != "is the hall free on friday?" || msg.Status != models.MessageSent {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.RoomID != models.RoomID(bob.ID, alice.ID) {
		t.Error("room id should not depend on who writes first")
	}
	if emitter.events[0].event != realtime.EventReceiveMessage || emitter.events[0].userID != bob.ID.String() {
		t.Errorf("unexpected emit %+v", emitter.events[0])
	}

	if _, err := cs.UpdateStatus(ctx, alice, msg.ID.Hex(), "read"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("sender must not mark their own message, got %v", err)
	}
	read, err := cs.UpdateStatus(ctx, bob, msg.ID.Hex(), "read")
	if err != nil || read.Status != models.MessageRead {
		t.Fatalf("expected read, got %+v %v", read, err)
	}
	back, err := cs.UpdateStatus(ctx, bob, msg.ID.Hex(), "delivered")
	if err != nil || back.Status != models.MessageRead {
		t.Fatalf("status went backwards: %+v %v", back, err)
	}

	updates := 0
	for _, e := range emitter.events {
		if e.event == realtime.EventMessageStatusUpdate {
			updates++
			if e.userID != alice.ID.String() {
				t.Error("status update should go to the sender")
			}
		}
	}
	if updates != 1 {
		t.Errorf("expected one status update, got %d", updates)
	}
}

func TestChatRejectsEmptyAndSelf(t *testing.T) {
	cs := NewChatService(newFakeChatRepo(), nil, nil)
	me := Actor{ID: uuid.New()}
	if _, err := cs.SendMessage(context.Background(), me, uuid.New(), "   "); !models.IsValidationError(err) {
		t.Errorf("expected validation error for empty text, got %v", err)
	}
	if _, err := cs.SendMessage(context.Background(), me, me.ID, "hi"); !models.IsValidationError(err) {
		t.Errorf("expected validation error for self chat, got %v", err)
	}
}

func TestListMessagesRequiresParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	cs := NewChatService(repo, nil, nil)
	ctx := context.Background()
	a, b := Actor{ID: uuid.New()}, Actor{ID: uuid.New()}
	msg, _ := cs.SendMessage(ctx, a, b.ID, "hello")

	if _, err := cs.ListMessages(ctx, Actor{ID: uuid.New()}, msg.RoomID, 0, 50); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	msgs, err := cs.ListMessages(ctx, b, msg.RoomID, 0, 50)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected one message, got %d %v", len(msgs), err)
	}
}
