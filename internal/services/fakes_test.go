package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
	creates  int
	// panicNext makes the next CreateBooking panic.
	panicNext bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*models.Booking{}}
}

func (r *fakeBookingRepo) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panicNext {
		r.panicNext = false
		panic("insert failed")
	}
	r.creates++
	cp := *b
	r.bookings[b.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (r *fakeBookingRepo) UpdateBooking(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if s, ok := fields["status"].(string); ok {
		b.Status = models.BookingStatus(s)
	}
	if s, ok := fields["payment_status"].(string); ok {
		b.PaymentStatus = models.PaymentStatus(s)
	}
	out := *b
	return &out, nil
}

func (r *fakeBookingRepo) ListBookings(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if v, ok := filter["user_id"]; ok && b.UserID.String() != v {
			continue
		}
		if v, ok := filter["provider_id"]; ok && b.ProviderID.String() != v {
			continue
		}
		if v, ok := filter["status"]; ok && string(b.Status) != v {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeBookingRepo) ListBookedDates(ctx context.Context, targetID uuid.UUID, from, to string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.bookings {
		if b.TargetID == targetID && b.Status == models.BookingAccepted && b.Date >= from && b.Date <= to {
			out = append(out, b.Date)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*models.Service
}

func (r *fakeServiceRepo) CreateService(ctx context.Context, s *models.Service) (*models.Service, error) {
	r.services[s.ID] = s
	return s, nil
}

func (r *fakeServiceRepo) GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s, nil
}

func (r *fakeServiceRepo) ListServices(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.Service, int, error) {
	var out []*models.Service
	for _, s := range r.services {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *fakeServiceRepo) UpdateService(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if t, ok := fields["title"].(string); ok {
		s.Title = t
	}
	return s, nil
}

func (r *fakeServiceRepo) DeleteService(ctx context.Context, id uuid.UUID) error {
	delete(r.services, id)
	return nil
}

type fakeSpaceRepo struct {
	spaces map[uuid.UUID]*models.EventSpace
}

func (r *fakeSpaceRepo) CreateEventSpace(ctx context.Context, s *models.EventSpace) (*models.EventSpace, error) {
	r.spaces[s.ID] = s
	return s, nil
}

func (r *fakeSpaceRepo) GetEventSpaceByID(ctx context.Context, id uuid.UUID) (*models.EventSpace, error) {
	s, ok := r.spaces[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s, nil
}

func (r *fakeSpaceRepo) ListEventSpaces(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.EventSpace, int, error) {
	var out []*models.EventSpace
	for _, s := range r.spaces {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *fakeSpaceRepo) UpdateEventSpace(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.EventSpace, error) {
	s, ok := r.spaces[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if st, ok := fields["status"].(string); ok {
		s.Status = models.SpaceStatus(st)
	}
	return s, nil
}

func (r *fakeSpaceRepo) DeleteEventSpace(ctx context.Context, id uuid.UUID) error {
	delete(r.spaces, id)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.BookingEvent
}

func (p *recordingPublisher) PublishBookingEvent(ctx context.Context, e *models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []models.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.BookingEventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type emitted struct {
	userID  string
	event   string
	payload interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) EmitToUser(userID, event string, payload interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{userID, event, payload})
	return nil
}

func (e *recordingEmitter) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.events {
		out = append(out, ev.event)
	}
	return out
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []*models.Notification
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	r.items = append(r.items, n)
	return n, nil
}

func (r *fakeNotificationRepo) ListNotifications(ctx context.Context, userId uuid.UUID, offset, limit int) ([]*models.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.items {
		if n.UserID == userId {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userId uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.UserID == userId && !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) find(userId uuid.UUID, id string) (int, error) {
	for i, n := range r.items {
		if n.ID.Hex() == id && n.UserID == userId {
			return i, nil
		}
	}
	return -1, fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userId uuid.UUID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.find(userId, id)
	if err != nil {
		return err
	}
	r.items[i].Read = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userId uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.UserID == userId && !item.Read {
			item.Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) DeleteNotification(ctx context.Context, userId uuid.UUID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.find(userId, id)
	if err != nil {
		return err
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

type fakeChatRepo struct {
	convs    map[string]*models.Conversation
	messages map[string]*models.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{convs: map[string]*models.Conversation{}, messages: map[string]*models.Message{}}
}

func (r *fakeChatRepo) UpsertConversation(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	room := models.RoomID(a, b)
	if c, ok := r.convs[room]; ok {
		return c, nil
	}
	c := &models.Conversation{ID: primitive.NewObjectID(), RoomID: room, Participants: []uuid.UUID{a, b}}
	r.convs[room] = c
	return c, nil
}

func (r *fakeChatRepo) GetConversation(ctx context.Context, roomId string) (*models.Conversation, error) {
	c, ok := r.convs[roomId]
	if !ok {
		return nil, models.ErrNotFound
	}
	return c, nil
}

func (r *fakeChatRepo) ListConversations(ctx context.Context, userId uuid.UUID) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, c := range r.convs {
		if c.HasParticipant(userId) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) SaveMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	r.messages[msg.ID.Hex()] = msg
	return msg, nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, roomId string, offset, limit int) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range r.messages {
		if m.RoomID == roomId {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeChatRepo) UpdateMessageStatus(ctx context.Context, id string, status models.MessageStatus) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if m.Status.Upgrades(status) {
		m.Status = status
	}
	cp := *m
	return &cp, nil
}

type fakePaymentRepo struct {
	byBooking map[uuid.UUID]*models.PaymentIntent
}

func (r *fakePaymentRepo) SavePaymentIntent(ctx context.Context, p *models.PaymentIntent) (*models.PaymentIntent, error) {
	r.byBooking[p.BookingID] = p
	return p, nil
}

func (r *fakePaymentRepo) GetPaymentByBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentIntent, error) {
	p, ok := r.byBooking[bookingID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

type fakeGateway struct {
	created int
	status  string
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount int64, currency string, md map[string]string) (*GatewayIntent, error) {
	g.created++
	return &GatewayIntent{Ref: fmt.Sprintf("pi_%d", g.created), ClientSecret: "secret_" + md["booking_id"], Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) IntentStatus(ctx context.Context, ref string) (string, error) {
	return g.status, nil
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) SendMail(to, subject, body string) error {
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

type fakeUsers struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUsers) GetUser(ctx context.Context, id uuid.UUID, token string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}
