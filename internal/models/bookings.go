package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus accepts the synonyms older clients send ("confirmed", "canceled").
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return BookingPending, nil
	case "accepted", "confirmed":
		return BookingAccepted, nil
	case "rejected", "declined":
		return BookingRejected, nil
	case "cancelled", "canceled":
		return BookingCancelled, nil
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown booking status %q", s))
}

// CanTransitionTo reports whether a booking in s may move to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingAccepted || next == BookingRejected || next == BookingCancelled
	case BookingAccepted:
		return next == BookingCancelled
	}
	return false
}

type TargetKind string

const (
	TargetService    TargetKind = "service"
	TargetEventSpace TargetKind = "event_space"
)

type PaymentStatus string

const (
	PaymentNone    PaymentStatus = "none"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Booking links a user to a service or event space on a given date.
type Booking struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	UserID        uuid.UUID     `db:"user_id" json:"user_id"`
	ProviderID    uuid.UUID     `db:"provider_id" json:"provider_id"`
	TargetKind    TargetKind    `db:"target_kind" json:"target_kind"`
	TargetID      uuid.UUID     `db:"target_id" json:"target_id"`
	TargetName    string        `db:"target_name" json:"target_name"`
	Date          string        `db:"date" json:"date"`
	Space         string        `db:"space" json:"space"`
	PhoneNumber   string        `db:"phone_number" json:"phone_number"`
	Notes         string        `db:"notes" json:"notes,omitempty"`
	Status        BookingStatus `db:"status" json:"status"`
	TotalPrice    float64       `db:"total_price" json:"total_price"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingRequest is the body of POST /bookings.
type BookingRequest struct {
	TargetKind  TargetKind `json:"target_kind" binding:"required" validate:"required,oneof=service event_space"`
	TargetID    uuid.UUID  `json:"target_id" binding:"required"`
	Date        string     `json:"date"`
	Space       string     `json:"space"`
	PhoneNumber string     `json:"phone_number"`
	Notes       string     `json:"notes,omitempty" validate:"max=500"`
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Booking, error)
	ListBookings(ctx context.Context, filter ListFilter, offset, limit int) ([]*Booking, int, error)
	// ListBookedDates returns dates in [from, to] that hold an accepted booking for the target.
	ListBookedDates(ctx context.Context, targetID uuid.UUID, from, to string) ([]string, error)
}

func (su *SupabaseRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	var created Booking
	if err := su.insertOne(BookingsTable, booking, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (su *SupabaseRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := su.getByID(BookingsTable, id, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (su *SupabaseRepo) UpdateBooking(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Booking, error) {
	var booking Booking
	if err := su.updateByID(BookingsTable, id, fields, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (su *SupabaseRepo) ListBookings(ctx context.Context, filter ListFilter, offset, limit int) ([]*Booking, int, error) {
	bookings := []*Booking{}
	total, err := su.list(BookingsTable, filter, offset, limit, &bookings)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (su *SupabaseRepo) ListBookedDates(ctx context.Context, targetID uuid.UUID, from, to string) ([]string, error) {
	var rows []struct {
		Date string `json:"date"`
	}
	raw, _, err := su.supabaseClient.From(BookingsTable).
		Select("date", "", false).
		Eq("target_id", targetID.String()).
		Eq("status", string(BookingAccepted)).
		Gte("date", from).
		Lte("date", to).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list booked dates: %w", err)
	}
	if err := jsonUnmarshal(raw, &rows); err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date)
	}
	return dates, nil
}
