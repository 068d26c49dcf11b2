package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

func TestPaymentIntentLifecycle(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	gateway := &fakeGateway{status: "processing"}
	ps := NewPaymentService(&fakePaymentRepo{byBooking: map[uuid.UUID]*models.PaymentIntent{}}, f.svc, gateway, "")

	b, err := f.svc.CreateBooking(ctx, f.user, f.serviceRequest())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ps.CreateIntent(ctx, f.user, b.ID); !models.IsValidationError(err) {
		t.Fatalf("pending booking must not be payable, got %v", err)
	}
	if _, err := f.svc.Respond(ctx, f.provider, b.ID, "accepted"); err != nil {
		t.Fatal(err)
	}
	if _, err := ps.CreateIntent(ctx, f.provider, b.ID); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("only the booking owner pays, got %v", err)
	}

	intent, err := ps.CreateIntent(ctx, f.user, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if intent.AmountCents != 25000 || intent.Currency != DefaultCurrency || intent.ClientSecret == "" {
		t.Errorf("unexpected intent %+v", intent)
	}
	again, err := ps.CreateIntent(ctx, f.user, b.ID)
	if err != nil || again.ProviderRef != intent.ProviderRef || gateway.created != 1 {
		t.Fatalf("expected the stored intent back, got %+v %v (created=%d)", again, err, gateway.created)
	}

	if _, err := ps.Confirm(ctx, f.user, b.ID); !models.IsValidationError(err) {
		t.Fatalf("unsettled payment should not confirm, got %v", err)
	}
	gateway.status = "succeeded"
	paid, err := ps.Confirm(ctx, f.user, b.ID)
	if err != nil || paid.PaymentStatus != models.PaymentPaid {
		t.Fatalf("expected paid booking, got %+v %v", paid, err)
	}
	types := f.publisher.types()
	if types[len(types)-1] != models.BookingPaid {
		t.Errorf("expected a paid event last, got %v", types)
	}
}
