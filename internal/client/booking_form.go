package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/guard"
	"github.com/joshua-takyi/evently/internal/models"
)

// BookingInput is what the user typed into the booking form.
type BookingInput struct {
	Date        string
	Space       string
	PhoneNumber string
	Notes       string
}

// BookingForm is one open booking modal. It submits through its own guard, so
// repeated confirms inside the cool-down reach the server at most once.
type BookingForm struct {
	bookings *BookingsClient
	guard    *guard.Guard
	kind     models.TargetKind
	targetID uuid.UUID

	// submitting mirrors a flag owned by whoever opened the form.
	submitting atomic.Bool

	mu   sync.Mutex
	last *models.Booking
}

// NewBookingForm opens a form for one service or event space.
func (c *Client) NewBookingForm(kind models.TargetKind, targetID uuid.UUID, opts guard.Options) *BookingForm {
	return &BookingForm{
		bookings: c.Bookings,
		guard:    guard.New(opts),
		kind:     kind,
		targetID: targetID,
	}
}

func (f *BookingForm) Guard() *guard.Guard { return f.guard }

// Open shows the form again after Close.
func (f *BookingForm) Open() { f.guard.Open() }

// Close hides the form and drops all guard state and the last result.
func (f *BookingForm) Close() {
	f.guard.Close()
	f.mu.Lock()
	f.last = nil
	f.mu.Unlock()
}

func (f *BookingForm) SetSubmitting(v bool) { f.submitting.Store(v) }

// Last is the booking created by the most recent successful confirm.
func (f *BookingForm) Last() *models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Confirm runs one confirm tap. The booking is non-nil only when the server
// accepted the request.
func (f *BookingForm) Confirm(ctx context.Context, in BookingInput) (guard.Outcome, *models.Booking) {
	var created *models.Booking
	payload := guard.Payload{Date: in.Date, Space: in.Space, PhoneNumber: in.PhoneNumber}
	outcome := f.guard.Confirm(ctx, f.submitting.Load(), payload, func(ctx context.Context, p guard.Payload) error {
		b, err := f.bookings.Create(ctx, &models.BookingRequest{
			TargetKind:  f.kind,
			TargetID:    f.targetID,
			Date:        p.Date,
			Space:       p.Space,
			PhoneNumber: p.PhoneNumber,
			Notes:       in.Notes,
		})
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	if created != nil {
		f.mu.Lock()
		f.last = created
		f.mu.Unlock()
	}
	return outcome, created
}

// AlertFor is the text to show the user for an outcome, or "" when nothing
// should be shown. Server rejections surface the server's own message.
func AlertFor(o guard.Outcome) string {
	switch {
	case o.Alert != "" && o.Reason != guard.Failed:
		return o.Alert
	case o.Reason != guard.Failed:
		return ""
	}
	if errors.Is(o.Err, ErrTimeout) || errors.Is(o.Err, ErrConnectionRefused) {
		return o.Err.Error()
	}
	var ae *APIError
	if errors.As(o.Err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return guard.AlertFailed
}

func fieldFor(r guard.Reason) string {
	switch r {
	case guard.InvalidPhone:
		return "phone_number"
	case guard.MissingDate:
		return "date"
	case guard.MissingSpace:
		return "space"
	}
	return ""
}
