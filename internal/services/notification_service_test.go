package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
)

func TestHandleBookingCreatedNotifiesProvider(t *testing.T) {
	repo := &fakeNotificationRepo{}
	emitter := &recordingEmitter{}
	mailer := &fakeMailer{}
	providerID, userID := uuid.New(), uuid.New()
	users := &fakeUsers{users: map[uuid.UUID]*models.User{providerID: {ID: providerID, Email: "host@example.com"}}}
	ns := NewNotificationService(repo, NotificationServiceOptions{Emitter: emitter, Users: users, Mailer: mailer})

	b := &models.Booking{ID: uuid.New(), UserID: userID, ProviderID: providerID, TargetName: "Garden Hall", Date: "2030-05-01", Status: models.BookingPending}
	if err := ns.HandleBookingEvent(context.Background(), models.NewBookingEvent(models.BookingCreated, b, userID, providerID)); err != nil {
		t.Fatal(err)
	}

	if len(repo.items) != 1 || repo.items[0].UserID != providerID || repo.items[0].Type != models.NotifyBookingRequest {
		t.Fatalf("unexpected notifications %+v", repo.items)
	}
	names := emitter.names()
	if len(names) != 2 || names[0] != realtime.EventNewBooking || names[1] != realtime.EventNotification {
		t.Errorf("unexpected emitted events %v", names)
	}
	if emitter.events[0].userID != providerID.String() {
		t.Error("newBooking should go to the provider room")
	}
	if len(mailer.sent) != 1 || !strings.HasPrefix(mailer.sent[0], "host@example.com|") {
		t.Errorf("expected one email to the provider, got %v", mailer.sent)
	}
}

func TestHandleBookingRespondedNotifiesUser(t *testing.T) {
	repo := &fakeNotificationRepo{}
	emitter := &recordingEmitter{}
	ns := NewNotificationService(repo, NotificationServiceOptions{Emitter: emitter})
	providerID, userID := uuid.New(), uuid.New()

	b := &models.Booking{ID: uuid.New(), UserID: userID, ProviderID: providerID, TargetName: "DJ set", Date: "2030-05-01", Status: models.BookingAccepted}
	if err := ns.HandleBookingEvent(context.Background(), models.NewBookingEvent(models.BookingResponded, b, providerID, userID)); err != nil {
		t.Fatal(err)
	}
	ev := emitter.events[0]
	if ev.event != realtime.EventBookingResponse || ev.userID != userID.String() {
		t.Fatalf("unexpected event %+v", ev)
	}
	if payload := ev.payload.(realtime.BookingResponse); payload.Status != "accepted" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if !strings.Contains(repo.items[0].Message, "accepted") {
		t.Errorf("unexpected message %q", repo.items[0].Message)
	}
}

func TestNotificationReadAndDelete(t *testing.T) {
	repo := &fakeNotificationRepo{}
	emitter := &recordingEmitter{}
	ns := NewNotificationService(repo, NotificationServiceOptions{Emitter: emitter})
	me := Actor{ID: uuid.New()}
	ctx := context.Background()

	first, _ := ns.Notify(ctx, me.ID, models.NotifyNewMessage, "hi", nil)
	ns.Notify(ctx, me.ID, models.NotifyNewMessage, "again", nil)

	page, err := ns.List(ctx, me, 0, 20)
	if err != nil || page.Total != 2 || page.Unread != 2 {
		t.Fatalf("unexpected page %+v %v", page, err)
	}
	if err := ns.MarkRead(ctx, me, first.ID.Hex()); err != nil {
		t.Fatal(err)
	}
	if n, _ := ns.UnreadCount(ctx, me); n != 1 {
		t.Errorf("expected one unread, got %d", n)
	}
	if n, _ := ns.MarkAllRead(ctx, me); n != 1 {
		t.Errorf("expected one marked, got %d", n)
	}

	if err := ns.Delete(ctx, me, first.ID.Hex()); err != nil {
		t.Fatal(err)
	}
	last := emitter.events[len(emitter.events)-1]
	if last.event != realtime.EventNotificationDeleted {
		t.Errorf("expected notificationDeleted, got %s", last.event)
	}
	other := Actor{ID: uuid.New()}
	if err := ns.Delete(ctx, other, page.Items[1].ID.Hex()); err == nil {
		t.Error("deleting someone else's notification should fail")
	}
}
