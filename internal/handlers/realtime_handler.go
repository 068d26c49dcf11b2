package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/middleware"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/realtime"
	"github.com/joshua-takyi/evently/internal/services"
)

// RealtimeDispatcher routes inbound socket events to the chat and booking services.
type RealtimeDispatcher struct {
	Chat     *services.ChatService
	Bookings *services.BookingService
}

func (d *RealtimeDispatcher) Dispatch(ctx context.Context, userID string, env realtime.Envelope) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	actor := services.Actor{ID: id}

	payload, err := realtime.Decode(env)
	if err != nil {
		return err
	}
	switch p := payload.(type) {
	case *realtime.SendMessage:
		if d.Chat == nil {
			return fmt.Errorf("chat is not available")
		}
		receiver, err := uuid.Parse(p.ReceiverID)
		if err != nil {
			return models.NewValidationError("receiverId", "invalid receiver ID")
		}
		_, err = d.Chat.SendMessage(ctx, actor, receiver, p.Text)
		return err
	case *realtime.MessageStatusUpdate:
		if d.Chat == nil {
			return fmt.Errorf("chat is not available")
		}
		_, err := d.Chat.UpdateStatus(ctx, actor, p.MessageID, string(p.Status))
		return err
	case *realtime.BookingResponse:
		if d.Bookings == nil {
			return fmt.Errorf("bookings are not available")
		}
		bookingID, err := uuid.Parse(p.BookingID)
		if err != nil {
			return models.NewValidationError("bookingId", "invalid booking ID")
		}
		_, err = d.Bookings.Respond(ctx, actor, bookingID, p.Status)
		return err
	}
	return fmt.Errorf("event %q cannot be sent by clients", env.Event)
}

// HubAuthenticator adapts the HTTP auth layer to the hub's upgrade check.
func HubAuthenticator(auth *middleware.Auth) realtime.Authenticator {
	return func(r *http.Request) (string, error) {
		claims, _, err := auth.Authenticate(r)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	}
}

func ServeWS(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeHTTP(c.Writer, c.Request)
	}
}
