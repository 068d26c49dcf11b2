package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
)

type profileLookup interface {
	GetUser(ctx context.Context, id uuid.UUID, accessToken string) (*models.User, error)
}

type NotificationService struct {
	repo    models.NotificationRepo
	emitter realtime.Emitter
	users   profileLookup
	mailer  Mailer
	logger  *slog.Logger
}

type NotificationServiceOptions struct {
	Emitter realtime.Emitter
	Users   profileLookup
	Mailer  Mailer
	Logger  *slog.Logger
}

func NewNotificationService(repo models.NotificationRepo, opts NotificationServiceOptions) *NotificationService {
	if opts.Emitter == nil {
		opts.Emitter = realtime.NopEmitter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &NotificationService{
		repo:    repo,
		emitter: opts.Emitter,
		users:   opts.Users,
		mailer:  opts.Mailer,
		logger:  opts.Logger,
	}
}

// NotificationPage is one page of notifications plus the unread total.
type NotificationPage struct {
	Items  []*models.Notification `json:"items"`
	Total  int                    `json:"total"`
	Unread int                    `json:"unread"`
}

func (ns *NotificationService) List(ctx context.Context, actor Actor, offset, limit int) (*NotificationPage, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	items, total, err := ns.repo.ListNotifications(ctx, actor.ID, offset, limit)
	if err != nil {
		return nil, err
	}
	unread, err := ns.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{Items: items, Total: total, Unread: unread}, nil
}

func (ns *NotificationService) UnreadCount(ctx context.Context, actor Actor) (int, error) {
	return ns.repo.CountUnread(ctx, actor.ID)
}

func (ns *NotificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	return ns.repo.MarkRead(ctx, actor.ID, id)
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int, error) {
	return ns.repo.MarkAllRead(ctx, actor.ID)
}

func (ns *NotificationService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := ns.repo.DeleteNotification(ctx, actor.ID, id); err != nil {
		return err
	}
	ns.emit(actor.ID, realtime.EventNotificationDeleted, realtime.NotificationDeleted{NotificationID: id})
	return nil
}

// Notify stores a notification and pushes it to the user's connections.
func (ns *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationType, message string, data map[string]string) (*models.Notification, error) {
	n, err := ns.repo.CreateNotification(ctx, &models.Notification{
		UserID:  userID,
		Type:    kind,
		Message: message,
		Data:    data,
	})
	if err != nil {
		return nil, err
	}
	ns.emit(userID, realtime.EventNotification, realtime.NotificationPushed{Notification: n})
	return n, nil
}

func (ns *NotificationService) emit(userID uuid.UUID, event string, payload interface{}) {
	if err := ns.emitter.EmitToUser(userID.String(), event, payload); err != nil {
		ns.logger.Warn("Failed to emit realtime event", "event", event, "user_id", userID, "error", err)
	}
}

// HandleBookingEvent turns a booking state change into a stored notification,
// a realtime push and, for new requests, an email to the provider.
func (ns *NotificationService) HandleBookingEvent(ctx context.Context, event *models.BookingEvent) error {
	b := &event.Booking
	data := map[string]string{
		"booking_id": b.ID.String(),
		"status":     string(b.Status),
		"date":       b.Date,
	}

	var (
		kind    models.NotificationType
		message string
	)
	switch event.Type {
	case models.BookingCreated:
		kind = models.NotifyBookingRequest
		message = fmt.Sprintf("New booking request for %s on %s", b.TargetName, b.Date)
		ns.emit(event.RecipientID, realtime.EventNewBooking, realtime.NewBooking{Booking: b})
		ns.emailProvider(ctx, b)
	case models.BookingResponded:
		kind = models.NotifyBookingResponse
		message = fmt.Sprintf("Your booking for %s on %s was %s", b.TargetName, b.Date, b.Status)
		ns.emit(event.RecipientID, realtime.EventBookingResponse, realtime.BookingResponse{
			BookingID: b.ID.String(),
			Status:    string(b.Status),
			Booking:   b,
		})
	case models.BookingCanceled:
		kind = models.NotifyBookingCancelled
		message = fmt.Sprintf("The booking for %s on %s was cancelled", b.TargetName, b.Date)
		ns.emit(event.RecipientID, realtime.EventBookingResponse, realtime.BookingResponse{
			BookingID: b.ID.String(),
			Status:    string(b.Status),
			Booking:   b,
		})
	case models.BookingPaid:
		kind = models.NotifyPaymentReceived
		message = fmt.Sprintf("Payment received for %s on %s", b.TargetName, b.Date)
	default:
		return fmt.Errorf("unknown booking event %q", event.Type)
	}

	if _, err := ns.Notify(ctx, event.RecipientID, kind, message, data); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (ns *NotificationService) emailProvider(ctx context.Context, b *models.Booking) {
	if ns.mailer == nil || ns.users == nil {
		return
	}
	provider, err := ns.users.GetUser(ctx, b.ProviderID, "")
	if err != nil {
		ns.logger.Warn("Failed to load provider for email", "provider_id", b.ProviderID, "error", err)
		return
	}
	subject, body := bookingRequestEmail(b.TargetName, b.Date, b.PhoneNumber)
	if err := ns.mailer.SendMail(provider.Email, subject, body); err != nil {
		ns.logger.Warn("Failed to email provider", "provider_id", b.ProviderID, "error", err)
	}
}
