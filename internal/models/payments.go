package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PaymentIntent struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	BookingID    uuid.UUID     `db:"booking_id" json:"booking_id"`
	UserID       uuid.UUID     `db:"user_id" json:"user_id"`
	ProviderRef  string        `db:"provider_ref" json:"provider_ref"`
	ClientSecret string        `db:"client_secret" json:"client_secret"`
	AmountCents  int64         `db:"amount_cents" json:"amount_cents"`
	Currency     string        `db:"currency" json:"currency"`
	Status       PaymentStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

type PaymentRepo interface {
	SavePaymentIntent(ctx context.Context, intent *PaymentIntent) (*PaymentIntent, error)
	GetPaymentByBooking(ctx context.Context, bookingID uuid.UUID) (*PaymentIntent, error)
}

func (su *SupabaseRepo) SavePaymentIntent(ctx context.Context, intent *PaymentIntent) (*PaymentIntent, error) {
	var saved PaymentIntent
	if err := su.insertOne(PaymentsTable, intent, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (su *SupabaseRepo) GetPaymentByBooking(ctx context.Context, bookingID uuid.UUID) (*PaymentIntent, error) {
	raw, _, err := su.supabaseClient.From(PaymentsTable).
		Select("*", "", false).
		Eq("booking_id", bookingID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get payment for booking %s: %w", bookingID, err)
	}
	var intent PaymentIntent
	if err := decodeSingle(raw, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
