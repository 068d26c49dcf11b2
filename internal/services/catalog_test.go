package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

func TestEventSpaceAvailabilityMarksBookedDays(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	spaces := f.svc.spaces

	day := time.Now().UTC().AddDate(0, 0, 20)
	req := &models.BookingRequest{
		TargetKind:  models.TargetEventSpace,
		TargetID:    f.space.ID,
		Date:        day.Format(models.DateLayout),
		PhoneNumber: "20304050",
	}
	b, err := f.svc.CreateBooking(ctx, f.user, req)
	if err != nil {
		t.Fatal(err)
	}

	month, err := spaces.Availability(ctx, f.space.ID, day.Year(), day.Month())
	if err != nil {
		t.Fatal(err)
	}
	if month.Days[day.Day()] {
		t.Error("a pending booking must not block the day")
	}

	if _, err := f.svc.Respond(ctx, f.provider, b.ID, "accepted"); err != nil {
		t.Fatal(err)
	}
	month, err = spaces.Availability(ctx, f.space.ID, day.Year(), day.Month())
	if err != nil {
		t.Fatal(err)
	}
	if !month.Days[day.Day()] || len(month.BookedDates) != 1 {
		t.Errorf("accepted booking should block the day, got %+v", month)
	}

	if _, err := spaces.Availability(ctx, f.space.ID, 2030, 13); !models.IsValidationError(err) {
		t.Errorf("expected month validation error, got %v", err)
	}
}

func TestEventSpaceOwnerChecks(t *testing.T) {
	repo := &fakeSpaceRepo{spaces: map[uuid.UUID]*models.EventSpace{}}
	ss := NewEventSpaceService(repo, nil, nil)
	ctx := context.Background()
	host := Actor{ID: uuid.New(), Role: models.RoleHost}

	if _, err := ss.CreateEventSpace(ctx, Actor{ID: uuid.New(), Role: models.RoleUser}, &models.EventSpace{Name: "Loft", Location: "Osu"}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("plain users cannot list spaces, got %v", err)
	}
	space, err := ss.CreateEventSpace(ctx, host, &models.EventSpace{Name: "  The   Loft ", Location: "Osu", Rules: []string{"No smoking", "no smoking"}})
	if err != nil {
		t.Fatal(err)
	}
	if space.Name != "The Loft" || space.Status != models.SpacePending || len(space.Rules) != 1 {
		t.Errorf("unexpected space %+v", space)
	}

	if _, err := ss.UpdateEventSpace(ctx, host, space.ID, map[string]interface{}{"status": "active"}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("owners cannot self-activate, got %v", err)
	}
	if _, err := ss.UpdateEventSpace(ctx, Actor{ID: uuid.New(), Role: models.RoleAdmin}, space.ID, map[string]interface{}{"status": "active"}); err != nil {
		t.Errorf("admin activation failed: %v", err)
	}
	if _, err := ss.UpdateEventSpace(ctx, host, space.ID, map[string]interface{}{"owner_id": uuid.New()}); !models.IsValidationError(err) {
		t.Errorf("owner_id must not be editable, got %v", err)
	}
	if err := ss.DeleteEventSpace(ctx, Actor{ID: uuid.New(), Role: models.RoleHost}, space.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("other hosts cannot delete, got %v", err)
	}
}

func TestWishlistServiceValidation(t *testing.T) {
	ws := NewWishlistService(nil)
	ctx := context.Background()
	if _, err := ws.AddToWishlist(ctx, uuid.New(), uuid.NewString(), "venue"); !models.IsValidationError(err) {
		t.Errorf("expected item type error, got %v", err)
	}
	if _, err := ws.AddToWishlist(ctx, uuid.New(), "not-a-uuid", "event"); !models.IsValidationError(err) {
		t.Errorf("expected item id error, got %v", err)
	}
}
