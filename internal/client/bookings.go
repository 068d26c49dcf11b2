package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/guard"
	"github.com/joshua-takyi/evently/internal/models"
)

type BookingsClient struct{ c *Client }

// Create checks the form fields locally before posting, so a malformed phone
// number never reaches the network.
func (b *BookingsClient) Create(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	if req.TargetID == uuid.Nil {
		return nil, &ValidationError{Field: "target_id", Message: "target is required"}
	}
	p := guard.Payload{Date: req.Date, Space: req.Space, PhoneNumber: req.PhoneNumber}
	if reason, alert, ok := p.Validate(); !ok {
		return nil, &ValidationError{Field: fieldFor(reason), Message: alert}
	}
	var booking models.Booking
	if _, err := b.c.do(ctx, http.MethodPost, "/bookings", nil, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (b *BookingsClient) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if _, err := b.c.do(ctx, http.MethodGet, "/bookings/"+id.String(), nil, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Mine lists bookings the caller made.
func (b *BookingsClient) Mine(ctx context.Context, opts ListOptions) (*Page[*models.Booking], error) {
	return list[*models.Booking](ctx, b.c, "/bookings/mine", opts)
}

// Incoming lists bookings made against the caller's listings.
func (b *BookingsClient) Incoming(ctx context.Context, opts ListOptions) (*Page[*models.Booking], error) {
	return list[*models.Booking](ctx, b.c, "/bookings/provider", opts)
}

func (b *BookingsClient) Respond(ctx context.Context, id uuid.UUID, status models.BookingStatus) (*models.Booking, error) {
	if status != models.BookingAccepted && status != models.BookingRejected {
		return nil, &ValidationError{Field: "status", Message: "response must be accepted or rejected"}
	}
	var booking models.Booking
	body := map[string]string{"status": string(status)}
	if _, err := b.c.do(ctx, http.MethodPatch, "/bookings/"+id.String()+"/respond", nil, body, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (b *BookingsClient) Cancel(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if _, err := b.c.do(ctx, http.MethodPatch, "/bookings/"+id.String()+"/cancel", nil, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
