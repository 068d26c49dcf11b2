package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name" validate:"required,min=2,max=120"`
	Type        string    `db:"type" json:"type" validate:"required"` // e.g. "concert", "wedding", "workshop"
	Description string    `db:"description" json:"description"`
	StartDate   time.Time `db:"start_date" json:"start_date" validate:"required"`
	EndDate     time.Time `db:"end_date" json:"end_date" validate:"required"`
	Location    string    `db:"location" json:"location" validate:"required"`
	Capacity    int       `db:"capacity" json:"capacity" validate:"gte=0"`
	Price       float64   `db:"price" json:"price" validate:"gte=0"`
	IsFree      bool      `db:"is_free" json:"is_free"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, filter ListFilter, offset, limit int) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

func (su *SupabaseRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	var created Event
	if err := su.insertOne(EventsTable, event, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (su *SupabaseRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	if err := su.getByID(EventsTable, id, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (su *SupabaseRepo) ListEvents(ctx context.Context, filter ListFilter, offset, limit int) ([]*Event, int, error) {
	events := []*Event{}
	total, err := su.list(EventsTable, filter, offset, limit, &events)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (su *SupabaseRepo) UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Event, error) {
	var event Event
	if err := su.updateByID(EventsTable, id, fields, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (su *SupabaseRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return su.deleteByID(EventsTable, id)
}
