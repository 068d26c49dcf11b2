// Package realtime carries booking, notification and chat events between the
// server and connected clients over WebSocket.
package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/joshua-takyi/evently/internal/models"
)

// Event names used on the wire.
const (
	EventJoinRoom            = "joinRoom"
	EventSendMessage         = "send_message"
	EventBookingResponse     = "bookingResponse"
	EventNewBooking          = "newBooking"
	EventNotificationDeleted = "notificationDeleted"
	EventReceiveMessage      = "receive_message"
	EventMessageStatusUpdate = "message_status_update"
	EventNotification        = "notification"
	EventError               = "error"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: raw}, nil
}

type JoinRoom struct {
	UserID string `json:"userId"`
}

type SendMessage struct {
	RoomID     string `json:"roomId,omitempty"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

// BookingResponse is sent by a provider to accept or reject, and pushed to the
// requesting user with the updated booking.
type BookingResponse struct {
	BookingID string          `json:"bookingId"`
	Status    string          `json:"status"`
	Booking   *models.Booking `json:"booking,omitempty"`
}

type NewBooking struct {
	Booking *models.Booking `json:"booking"`
}

type NotificationDeleted struct {
	NotificationID string `json:"notificationId"`
}

type ReceiveMessage struct {
	Message *models.Message `json:"message"`
}

type MessageStatusUpdate struct {
	MessageID string               `json:"messageId"`
	RoomID    string               `json:"roomId"`
	Status    models.MessageStatus `json:"status"`
}

type NotificationPushed struct {
	Notification *models.Notification `json:"notification"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// Decode returns the typed payload for a known event name.
func Decode(env Envelope) (interface{}, error) {
	var target interface{}
	switch env.Event {
	case EventJoinRoom:
		target = &JoinRoom{}
	case EventSendMessage:
		target = &SendMessage{}
	case EventBookingResponse:
		target = &BookingResponse{}
	case EventNewBooking:
		target = &NewBooking{}
	case EventNotificationDeleted:
		target = &NotificationDeleted{}
	case EventReceiveMessage:
		target = &ReceiveMessage{}
	case EventMessageStatusUpdate:
		target = &MessageStatusUpdate{}
	case EventNotification:
		target = &NotificationPushed{}
	case EventError:
		target = &ErrorPayload{}
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", env.Event, err)
		}
	}
	return target, nil
}

// Emitter pushes an event to every connection of a user.
type Emitter interface {
	EmitToUser(userID string, event string, payload interface{}) error
}

// NopEmitter drops everything.
type NopEmitter struct{}

func (NopEmitter) EmitToUser(string, string, interface{}) error { return nil }
