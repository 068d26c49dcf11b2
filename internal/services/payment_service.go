package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

const DefaultCurrency = "usd"

// GatewayIntent is what a payment provider returns for a new intent.
type GatewayIntent struct {
	Ref          string
	ClientSecret string
	Status       string
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*GatewayIntent, error)
	IntentStatus(ctx context.Context, ref string) (string, error)
}

type PaymentService struct {
	payments models.PaymentRepo
	bookings *BookingService
	gateway  PaymentGateway
	currency string
}

func NewPaymentService(payments models.PaymentRepo, bookings *BookingService, gateway PaymentGateway, currency string) *PaymentService {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &PaymentService{payments: payments, bookings: bookings, gateway: gateway, currency: currency}
}

// CreateIntent starts payment for an accepted booking. Asking again for the same
// booking returns the stored intent.
func (ps *PaymentService) CreateIntent(ctx context.Context, actor Actor, bookingID uuid.UUID) (*models.PaymentIntent, error) {
	if ps.gateway == nil {
		return nil, fmt.Errorf("payments are not configured")
	}
	booking, err := ps.bookings.GetBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.ID {
		return nil, fmt.Errorf("only the booking owner can pay: %w", models.ErrForbidden)
	}
	if booking.Status != models.BookingAccepted {
		return nil, models.NewValidationError("booking_id", "booking must be accepted before payment")
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("booking is already paid: %w", models.ErrConflict)
	}

	existing, err := ps.payments.GetPaymentByBooking(ctx, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	amount := int64(math.Round(booking.TotalPrice * 100))
	if amount <= 0 {
		return nil, models.NewValidationError("booking_id", "booking has no amount to pay")
	}
	gi, err := ps.gateway.CreateIntent(ctx, amount, ps.currency, map[string]string{
		"booking_id": booking.ID.String(),
		"user_id":    actor.ID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	intent, err := ps.payments.SavePaymentIntent(ctx, &models.PaymentIntent{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		UserID:       actor.ID,
		ProviderRef:  gi.Ref,
		ClientSecret: gi.ClientSecret,
		AmountCents:  amount,
		Currency:     ps.currency,
		Status:       models.PaymentPending,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if _, err := ps.bookings.bookingRepo.UpdateBooking(ctx, booking.ID, map[string]interface{}{
		"payment_status": string(models.PaymentPending),
		"updated_at":     time.Now(),
	}); err != nil {
		return nil, err
	}
	return intent, nil
}

// Confirm asks the gateway whether the booking's intent has settled and records it.
func (ps *PaymentService) Confirm(ctx context.Context, actor Actor, bookingID uuid.UUID) (*models.Booking, error) {
	if ps.gateway == nil {
		return nil, fmt.Errorf("payments are not configured")
	}
	booking, err := ps.bookings.GetBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return booking, nil
	}
	intent, err := ps.payments.GetPaymentByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	status, err := ps.gateway.IntentStatus(ctx, intent.ProviderRef)
	if err != nil {
		return nil, fmt.Errorf("failed to check payment: %w", err)
	}
	if status != "succeeded" {
		return nil, models.NewValidationError("booking_id", fmt.Sprintf("payment is %s", status))
	}
	return ps.bookings.MarkPaid(ctx, booking, actor.ID)
}
