package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/models"
)

var editableEventFields = map[string]bool{
	"name": true, "type": true, "description": true, "start_date": true, "end_date": true,
	"location": true, "capacity": true, "price": true, "is_free": true, "image_url": true,
}

type EventService struct {
	eventRepo models.EventRepo
	uploader  ImageUploader
}

func NewEventService(eventRepo models.EventRepo, uploader ImageUploader) *EventService {
	return &EventService{eventRepo: eventRepo, uploader: uploader}
}

func (es *EventService) CreateEvent(ctx context.Context, actor Actor, event *models.Event) (*models.Event, error) {
	if !actor.CanList() {
		return nil, fmt.Errorf("only hosts and providers can create events: %w", models.ErrForbidden)
	}
	event.Name = helpers.StringTrim(event.Name)
	event.Location = helpers.StringTrim(event.Location)
	if err := models.Validate.Struct(event); err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	if event.EndDate.Before(event.StartDate) {
		return nil, models.NewValidationError("end_date", "end date must not be before start date")
	}
	if event.IsFree {
		event.Price = 0
	}

	if event.ImageURL != "" {
		urls, err := uploadIfAny(ctx, es.uploader, []string{event.ImageURL}, helpers.EventsFolder)
		if err != nil {
			return nil, err
		}
		if len(urls) > 0 {
			event.ImageURL = urls[0]
		}
	}

	now := time.Now()
	event.ID = uuid.New()
	event.OwnerID = actor.ID
	event.CreatedAt = now
	event.UpdatedAt = now

	created, err := es.eventRepo.CreateEvent(ctx, event)
	if err != nil {
		if es.uploader != nil && event.ImageURL != "" {
			es.uploader.Delete(ctx, []string{event.ImageURL})
		}
		return nil, err
	}
	return created, nil
}

func (es *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, models.NewValidationError("id", "invalid event ID")
	}
	return es.eventRepo.GetEventByID(ctx, id)
}

func (es *EventService) ListEvents(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.Event, int, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, 0, err
	}
	return es.eventRepo.ListEvents(ctx, filter, offset, limit)
}

func (es *EventService) UpdateEvent(ctx context.Context, actor Actor, id uuid.UUID, fields map[string]interface{}) (*models.Event, error) {
	if err := restrictFields(fields, editableEventFields); err != nil {
		return nil, err
	}
	existing, err := es.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(existing.OwnerID) {
		return nil, models.ErrForbidden
	}
	fields["updated_at"] = time.Now()
	return es.eventRepo.UpdateEvent(ctx, id, fields)
}

func (es *EventService) DeleteEvent(ctx context.Context, actor Actor, id uuid.UUID) error {
	existing, err := es.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if !actor.owns(existing.OwnerID) {
		return models.ErrForbidden
	}
	if err := es.eventRepo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	if es.uploader != nil && existing.ImageURL != "" {
		es.uploader.Delete(ctx, []string{existing.ImageURL})
	}
	return nil
}
