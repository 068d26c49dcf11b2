package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/guard"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/models"
)

type BookingService struct {
	bookingRepo models.BookingRepo
	serviceRepo models.ServiceRepo
	spaces      *EventSpaceService
	guards      *guard.Registry
	locker      guard.Locker
	publisher   BookingEventPublisher
	logger      *slog.Logger
}

type BookingServiceOptions struct {
	Guards    *guard.Registry
	Locker    guard.Locker
	Publisher BookingEventPublisher
	Logger    *slog.Logger
}

func NewBookingService(bookingRepo models.BookingRepo, serviceRepo models.ServiceRepo, spaces *EventSpaceService, opts BookingServiceOptions) *BookingService {
	if opts.Guards == nil {
		opts.Guards = guard.NewRegistry(guard.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &BookingService{
		bookingRepo: bookingRepo,
		serviceRepo: serviceRepo,
		spaces:      spaces,
		guards:      opts.Guards,
		locker:      opts.Locker,
		publisher:   opts.Publisher,
		logger:      opts.Logger,
	}
}

func (bs *BookingService) Guards() *guard.Registry { return bs.guards }

type bookingTarget struct {
	providerID uuid.UUID
	name       string
	price      float64
	space      *models.EventSpace
}

func (bs *BookingService) resolveTarget(ctx context.Context, kind models.TargetKind, id uuid.UUID) (*bookingTarget, error) {
	switch kind {
	case models.TargetService:
		svc, err := bs.serviceRepo.GetServiceByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &bookingTarget{providerID: svc.ProviderID, name: svc.Title, price: svc.Price}, nil
	case models.TargetEventSpace:
		space, err := bs.spaces.GetEventSpace(ctx, id)
		if err != nil {
			return nil, err
		}
		if space.Status == models.SpaceInactive {
			return nil, models.NewValidationError("target_id", "this event space is not taking bookings")
		}
		return &bookingTarget{providerID: space.OwnerID, name: space.Name, price: space.PricePerDay, space: space}, nil
	}
	return nil, models.NewValidationError("target_kind", "target kind must be service or event_space")
}

// GuardKey is the per user and target key the submission guard is held under.
func GuardKey(userID uuid.UUID, kind models.TargetKind, targetID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", userID, kind, targetID)
}

// CreateBooking validates the request and submits it through the per user and
// target guard, so a repeated submit inside the cool-down never creates a second row.
func (bs *BookingService) CreateBooking(ctx context.Context, actor Actor, req *models.BookingRequest) (*models.Booking, error) {
	if actor.ID == uuid.Nil {
		return nil, models.ErrForbidden
	}
	if err := models.Validate.Struct(req); err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	if req.TargetID == uuid.Nil {
		return nil, models.NewValidationError("target_id", "target is required")
	}

	target, err := bs.resolveTarget(ctx, req.TargetKind, req.TargetID)
	if err != nil {
		return nil, err
	}
	if target.providerID == actor.ID {
		return nil, models.NewValidationError("target_id", "you cannot book your own listing")
	}

	payload := guard.Payload{
		Date:        strings.TrimSpace(req.Date),
		Space:       helpers.StringTrim(req.Space),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	}
	if payload.Space == "" && target.space != nil {
		payload.Space = target.space.Location
	}
	if reason, alert, ok := payload.Validate(); !ok {
		return nil, models.NewValidationError(fieldForReason(reason), alert)
	}

	day, err := time.Parse(models.DateLayout, payload.Date)
	if err != nil {
		return nil, models.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	if day.Before(today()) {
		return nil, models.NewValidationError("date", "date is in the past")
	}
	if target.space != nil {
		free, err := bs.spaces.IsDateAvailable(ctx, target.space, day)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, fmt.Errorf("%s is not available on %s: %w", target.name, payload.Date, models.ErrConflict)
		}
	}

	key := GuardKey(actor.ID, req.TargetKind, req.TargetID)

	var created *models.Booking
	outcome := bs.guards.Confirm(ctx, key, payload, func(ctx context.Context, p guard.Payload) error {
		if bs.locker != nil {
			ok, err := bs.locker.TryLock(ctx, key, bs.guards.CoolDown())
			if err != nil {
				// the in-process guard still holds, so a broken lock store does not block bookings
				bs.logger.Warn("Booking lock unavailable", "key", key, "error", err)
			} else if !ok {
				return models.ErrDuplicateSubmission
			}
		}

		now := time.Now()
		booking := &models.Booking{
			ID:            uuid.New(),
			UserID:        actor.ID,
			ProviderID:    target.providerID,
			TargetKind:    req.TargetKind,
			TargetID:      req.TargetID,
			TargetName:    target.name,
			Date:          p.Date,
			Space:         p.Space,
			PhoneNumber:   p.PhoneNumber,
			Notes:         helpers.StringTrim(req.Notes),
			Status:        models.BookingPending,
			TotalPrice:    target.price,
			PaymentStatus: models.PaymentNone,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		var err error
		created, err = bs.bookingRepo.CreateBooking(ctx, booking)
		return err
	})

	switch {
	case outcome.Rejected():
		return nil, models.ErrDuplicateSubmission
	case outcome.Invalid():
		return nil, models.NewValidationError(fieldForReason(outcome.Reason), outcome.Alert)
	case outcome.Reason == guard.Closed:
		return nil, models.ErrDuplicateSubmission
	case outcome.Err != nil:
		if errors.Is(outcome.Err, models.ErrDuplicateSubmission) {
			return nil, models.ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("failed to create booking: %w", outcome.Err)
	}

	bs.publish(ctx, models.NewBookingEvent(models.BookingCreated, created, actor.ID, created.ProviderID))
	return created, nil
}

func fieldForReason(r guard.Reason) string {
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

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (bs *BookingService) publish(ctx context.Context, event *models.BookingEvent) {
	if bs.publisher == nil {
		return
	}
	if err := bs.publisher.PublishBookingEvent(ctx, event); err != nil {
		bs.logger.Error("Failed to publish booking event",
			"type", event.Type,
			"booking_id", event.Booking.ID,
			"error", err,
		)
	}
}

// GetBooking returns a booking visible to the actor.
func (bs *BookingService) GetBooking(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	if id == uuid.Nil {
		return nil, models.NewValidationError("id", "invalid booking ID")
	}
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && booking.UserID != actor.ID && booking.ProviderID != actor.ID {
		return nil, models.ErrForbidden
	}
	return booking, nil
}

func (bs *BookingService) ListMyBookings(ctx context.Context, actor Actor, status string, offset, limit int) ([]*models.Booking, int, error) {
	return bs.list(ctx, "user_id", actor, status, offset, limit)
}

func (bs *BookingService) ListProviderBookings(ctx context.Context, actor Actor, status string, offset, limit int) ([]*models.Booking, int, error) {
	return bs.list(ctx, "provider_id", actor, status, offset, limit)
}

func (bs *BookingService) list(ctx context.Context, column string, actor Actor, status string, offset, limit int) ([]*models.Booking, int, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, 0, err
	}
	filter := models.ListFilter{column: actor.ID.String()}
	if status != "" {
		s, err := models.ParseBookingStatus(status)
		if err != nil {
			return nil, 0, err
		}
		filter["status"] = string(s)
	}
	return bs.bookingRepo.ListBookings(ctx, filter, offset, limit)
}

// Respond lets the provider accept or reject a pending booking.
func (bs *BookingService) Respond(ctx context.Context, actor Actor, id uuid.UUID, status string) (*models.Booking, error) {
	next, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}
	if next != models.BookingAccepted && next != models.BookingRejected {
		return nil, models.NewValidationError("status", "response must be accepted or rejected")
	}
	booking, err := bs.GetBooking(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if booking.ProviderID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("only the provider can respond: %w", models.ErrForbidden)
	}

	if next == models.BookingAccepted && booking.TargetKind == models.TargetEventSpace {
		booked, err := bs.spaces.bookedDates(ctx, booking.TargetID, booking.Date, booking.Date)
		if err != nil {
			return nil, err
		}
		if len(booked) > 0 {
			return nil, fmt.Errorf("%s is already booked on %s: %w", booking.TargetName, booking.Date, models.ErrConflict)
		}
	}

	updated, err := bs.transition(ctx, booking, next)
	if err != nil {
		return nil, err
	}
	bs.publish(ctx, models.NewBookingEvent(models.BookingResponded, updated, actor.ID, updated.UserID))
	return updated, nil
}

// Cancel is available to both sides of the booking.
func (bs *BookingService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	booking, err := bs.GetBooking(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updated, err := bs.transition(ctx, booking, models.BookingCancelled)
	if err != nil {
		return nil, err
	}
	recipient := updated.ProviderID
	if actor.ID == updated.ProviderID {
		recipient = updated.UserID
	}
	bs.publish(ctx, models.NewBookingEvent(models.BookingCanceled, updated, actor.ID, recipient))
	return updated, nil
}

func (bs *BookingService) transition(ctx context.Context, booking *models.Booking, next models.BookingStatus) (*models.Booking, error) {
	if !booking.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s -> %s: %w", booking.Status, next, models.ErrInvalidTransition)
	}
	return bs.bookingRepo.UpdateBooking(ctx, booking.ID, map[string]interface{}{
		"status":     string(next),
		"updated_at": time.Now(),
	})
}

// MarkPaid records a settled payment and notifies the provider.
func (bs *BookingService) MarkPaid(ctx context.Context, booking *models.Booking, payer uuid.UUID) (*models.Booking, error) {
	updated, err := bs.bookingRepo.UpdateBooking(ctx, booking.ID, map[string]interface{}{
		"payment_status": string(models.PaymentPaid),
		"updated_at":     time.Now(),
	})
	if err != nil {
		return nil, err
	}
	bs.publish(ctx, models.NewBookingEvent(models.BookingPaid, updated, payer, updated.ProviderID))
	return updated, nil
}
