package services

import (
	"context"

	"github.com/joshua-takyi/evently/internal/models"
)

// BookingEventPublisher hands booking state changes to whoever fans them out.
type BookingEventPublisher interface {
	PublishBookingEvent(ctx context.Context, event *models.BookingEvent) error
}

type BookingEventHandler interface {
	HandleBookingEvent(ctx context.Context, event *models.BookingEvent) error
}

// DirectPublisher delivers events in-process when no broker is configured.
type DirectPublisher struct {
	Handler BookingEventHandler
}

func (p DirectPublisher) PublishBookingEvent(ctx context.Context, event *models.BookingEvent) error {
	if p.Handler == nil {
		return nil
	}
	return p.Handler.HandleBookingEvent(ctx, event)
}
