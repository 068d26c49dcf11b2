package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingEventType string

const (
	BookingCreated   BookingEventType = "booking.created"
	BookingResponded BookingEventType = "booking.responded"
	BookingCanceled  BookingEventType = "booking.cancelled"
	BookingPaid      BookingEventType = "booking.paid"
)

// BookingEvent is published on every booking state change.
type BookingEvent struct {
	Type        BookingEventType `json:"type"`
	Booking     Booking          `json:"booking"`
	ActorID     uuid.UUID        `json:"actor_id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

func NewBookingEvent(t BookingEventType, b *Booking, actor, recipient uuid.UUID) *BookingEvent {
	return &BookingEvent{
		Type:        t,
		Booking:     *b,
		ActorID:     actor,
		RecipientID: recipient,
		OccurredAt:  time.Now().UTC(),
	}
}
