package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

type PaymentsClient struct{ c *Client }

// CreateIntent returns the intent whose ClientSecret the card widget confirms.
func (p *PaymentsClient) CreateIntent(ctx context.Context, bookingID uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if _, err := p.c.do(ctx, http.MethodPost, "/bookings/"+bookingID.String()+"/payment-intent", nil, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// Confirm asks the server to check the intent with the provider and mark the booking paid.
func (p *PaymentsClient) Confirm(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if _, err := p.c.do(ctx, http.MethodPost, "/bookings/"+bookingID.String()+"/payment-confirm", nil, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
