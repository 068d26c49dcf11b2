package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/models"
)

var editableSpaceFields = map[string]bool{
	"name": true, "description": true, "location": true, "coordinates": true, "capacity": true,
	"price_per_day": true, "amenities": true, "images": true, "rules": true,
	"availability": true, "status": true,
}

type EventSpaceService struct {
	spaceRepo   models.EventSpaceRepo
	bookingRepo models.BookingRepo
	uploader    ImageUploader
}

func NewEventSpaceService(spaceRepo models.EventSpaceRepo, bookingRepo models.BookingRepo, uploader ImageUploader) *EventSpaceService {
	return &EventSpaceService{spaceRepo: spaceRepo, bookingRepo: bookingRepo, uploader: uploader}
}

func (ss *EventSpaceService) CreateEventSpace(ctx context.Context, actor Actor, space *models.EventSpace) (*models.EventSpace, error) {
	if !actor.CanList() {
		return nil, fmt.Errorf("only hosts can list event spaces: %w", models.ErrForbidden)
	}
	space.Name = helpers.StringTrim(space.Name)
	space.Location = helpers.StringTrim(space.Location)
	space.Rules = helpers.RemoveDuplicates(space.Rules)
	if err := models.Validate.Struct(space); err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	for _, d := range space.Availability.UnavailableDates {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return nil, models.NewValidationError("availability", fmt.Sprintf("invalid date %q", d))
		}
	}

	images, err := uploadIfAny(ctx, ss.uploader, space.Images, helpers.SpacesFolder)
	if err != nil {
		return nil, err
	}
	space.Images = images

	now := time.Now()
	space.ID = uuid.New()
	space.OwnerID = actor.ID
	space.Status = models.SpacePending
	space.CreatedAt = now
	space.UpdatedAt = now

	created, err := ss.spaceRepo.CreateEventSpace(ctx, space)
	if err != nil {
		// If creation fails, clean up uploaded images
		if ss.uploader != nil && len(space.Images) > 0 {
			ss.uploader.Delete(ctx, space.Images)
		}
		return nil, err
	}
	return created, nil
}

func (ss *EventSpaceService) GetEventSpace(ctx context.Context, id uuid.UUID) (*models.EventSpace, error) {
	if id == uuid.Nil {
		return nil, models.NewValidationError("id", "invalid event space ID")
	}
	return ss.spaceRepo.GetEventSpaceByID(ctx, id)
}

func (ss *EventSpaceService) ListEventSpaces(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.EventSpace, int, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, 0, err
	}
	return ss.spaceRepo.ListEventSpaces(ctx, filter, offset, limit)
}

func (ss *EventSpaceService) UpdateEventSpace(ctx context.Context, actor Actor, id uuid.UUID, fields map[string]interface{}) (*models.EventSpace, error) {
	if err := restrictFields(fields, editableSpaceFields); err != nil {
		return nil, err
	}
	if status, ok := fields["status"]; ok && !actor.IsAdmin() {
		// owners may only take their space offline or back to pending review
		if s, _ := status.(string); s != string(models.SpaceInactive) && s != string(models.SpacePending) {
			return nil, fmt.Errorf("only admins can activate a space: %w", models.ErrForbidden)
		}
	}
	existing, err := ss.GetEventSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(existing.OwnerID) {
		return nil, models.ErrForbidden
	}
	fields["updated_at"] = time.Now()
	return ss.spaceRepo.UpdateEventSpace(ctx, id, fields)
}

func (ss *EventSpaceService) DeleteEventSpace(ctx context.Context, actor Actor, id uuid.UUID) error {
	existing, err := ss.GetEventSpace(ctx, id)
	if err != nil {
		return err
	}
	if !actor.owns(existing.OwnerID) {
		return models.ErrForbidden
	}
	if err := ss.spaceRepo.DeleteEventSpace(ctx, id); err != nil {
		return err
	}
	if ss.uploader != nil && len(existing.Images) > 0 {
		ss.uploader.Delete(ctx, existing.Images)
	}
	return nil
}

// MonthAvailability is the calendar view of one month for a space.
type MonthAvailability struct {
	SpaceID     uuid.UUID    `json:"space_id"`
	Year        int          `json:"year"`
	Month       int          `json:"month"`
	Days        map[int]bool `json:"days"`
	BookedDates []string     `json:"booked_dates"`
}

// Availability returns per-day unavailability for the month, counting owner
// blocks and accepted bookings.
func (ss *EventSpaceService) Availability(ctx context.Context, id uuid.UUID, year int, month time.Month) (*MonthAvailability, error) {
	if month < time.January || month > time.December {
		return nil, models.NewValidationError("month", "month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return nil, models.NewValidationError("year", "invalid year")
	}
	space, err := ss.GetEventSpace(ctx, id)
	if err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	booked, err := ss.bookedDates(ctx, id, first.Format(models.DateLayout), last.Format(models.DateLayout))
	if err != nil {
		return nil, err
	}

	return &MonthAvailability{
		SpaceID:     id,
		Year:        year,
		Month:       int(month),
		Days:        space.Availability.WithBookedDates(booked).CalendarSnapshot(year, month),
		BookedDates: booked,
	}, nil
}

func (ss *EventSpaceService) bookedDates(ctx context.Context, id uuid.UUID, from, to string) ([]string, error) {
	if ss.bookingRepo == nil {
		return nil, nil
	}
	return ss.bookingRepo.ListBookedDates(ctx, id, from, to)
}

// IsDateAvailable reports whether the space can take a booking on date.
func (ss *EventSpaceService) IsDateAvailable(ctx context.Context, space *models.EventSpace, date time.Time) (bool, error) {
	if space.Availability.IsDateUnavailable(date) {
		return false, nil
	}
	day := date.Format(models.DateLayout)
	booked, err := ss.bookedDates(ctx, space.ID, day, day)
	if err != nil {
		return false, err
	}
	return len(booked) == 0, nil
}
