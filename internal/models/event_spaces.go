package models

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type SpaceStatus string

const (
	SpacePending  SpaceStatus = "pending"
	SpaceActive   SpaceStatus = "active"
	SpaceInactive SpaceStatus = "inactive"
)

// Coordinates maps to PostGIS geography(Point,4326)
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Scan reads WKT ("POINT(lng lat)", optionally SRID-prefixed) or "lat,lng".
func (c *Coordinates) Scan(src interface{}) error {
	var dataStr string
	switch v := src.(type) {
	case []byte:
		dataStr = string(v)
	case string:
		dataStr = v
	case nil:
		c.Latitude, c.Longitude = 0, 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Coordinates", src)
	}

	var lon, lat float64
	if _, err := fmt.Sscanf(dataStr, "SRID=4326;POINT(%f %f)", &lon, &lat); err == nil {
		c.Latitude, c.Longitude = lat, lon
		return nil
	}
	if _, err := fmt.Sscanf(dataStr, "POINT(%f %f)", &lon, &lat); err == nil {
		c.Latitude, c.Longitude = lat, lon
		return nil
	}

	if parts := strings.Split(dataStr, ","); len(parts) == 2 {
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 == nil && err2 == nil {
			c.Latitude, c.Longitude = lat, lng
			return nil
		}
	}

	return fmt.Errorf("failed to parse coordinates from: %q", dataStr)
}

// Value allows Coordinates to be written into Postgres
func (c Coordinates) Value() (driver.Value, error) {
	return fmt.Sprintf("SRID=4326;POINT(%f %f)", c.Longitude, c.Latitude), nil
}

type DateRange struct {
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`   // YYYY-MM-DD; empty means same as Start
}

type Availability struct {
	// Owner-defined blocks, days the space is NOT available
	UnavailableDates      []string    `json:"unavailable_dates,omitempty"`
	UnavailableDateRanges []DateRange `json:"unavailable_date_ranges,omitempty"`
	Timezone              string      `json:"timezone,omitempty"`
}

// IsDateUnavailable reports whether d falls on a blocked day.
func (a Availability) IsDateUnavailable(d time.Time) bool {
	ds := d.Format(DateLayout)
	for _, s := range a.UnavailableDates {
		if s == ds {
			return true
		}
	}

	day, _ := time.Parse(DateLayout, ds)
	for _, r := range a.UnavailableDateRanges {
		if r.Start == "" {
			continue
		}
		end := r.End
		if end == "" {
			end = r.Start
		}
		startT, err1 := time.Parse(DateLayout, r.Start)
		endT, err2 := time.Parse(DateLayout, end)
		if err1 != nil || err2 != nil {
			continue
		}
		// inclusive
		if !day.Before(startT) && !day.After(endT) {
			return true
		}
	}
	return false
}

// WithBookedDates returns a copy that also blocks the given days.
func (a Availability) WithBookedDates(dates []string) Availability {
	out := a
	out.UnavailableDates = append(append([]string{}, a.UnavailableDates...), dates...)
	return out
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalendarSnapshot returns map[dayOfMonth]unavailable for the requested month.
func (a Availability) CalendarSnapshot(year int, month time.Month) map[int]bool {
	days := daysIn(month, year)
	out := make(map[int]bool, days)
	for day := 1; day <= days; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		out[day] = a.IsDateUnavailable(date)
	}
	return out
}

// EventSpace is a bookable physical venue.
type EventSpace struct {
	ID          uuid.UUID       `db:"id" json:"id,omitempty"`
	OwnerID     uuid.UUID       `db:"owner_id" json:"owner_id,omitempty"`
	Name        string          `db:"name" json:"name" validate:"required,min=2,max=120"`
	Description string          `db:"description" json:"description,omitempty"`
	Location    string          `db:"location" json:"location" validate:"required"`
	Coordinates *Coordinates    `db:"coordinates" json:"coordinates,omitempty"`
	Capacity    int             `db:"capacity" json:"capacity,omitempty" validate:"gte=0"`
	PricePerDay float64         `db:"price_per_day" json:"price_per_day" validate:"gte=0"`
	Amenities   map[string]bool `db:"amenities" json:"amenities,omitempty"`
	Images      []string        `db:"images" json:"images,omitempty"`
	Rules       []string        `db:"rules" json:"rules,omitempty"`

	Availability Availability `db:"availability" json:"availability"`
	Status       SpaceStatus  `db:"status" json:"status,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// AmenityList returns the names of amenities that are switched on.
func (s *EventSpace) AmenityList() []string {
	var out []string
	for name, on := range s.Amenities {
		if on {
			out = append(out, name)
		}
	}
	return out
}

type EventSpaceRepo interface {
	CreateEventSpace(ctx context.Context, space *EventSpace) (*EventSpace, error)
	GetEventSpaceByID(ctx context.Context, id uuid.UUID) (*EventSpace, error)
	ListEventSpaces(ctx context.Context, filter ListFilter, offset, limit int) ([]*EventSpace, int, error)
	UpdateEventSpace(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*EventSpace, error)
	DeleteEventSpace(ctx context.Context, id uuid.UUID) error
}
