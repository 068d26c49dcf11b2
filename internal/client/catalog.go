package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

type EventsClient struct{ c *Client }

func (e *EventsClient) List(ctx context.Context, opts ListOptions) (*Page[*models.Event], error) {
	return list[*models.Event](ctx, e.c, "/events", opts)
}

func (e *EventsClient) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if _, err := e.c.do(ctx, http.MethodGet, "/events/"+id.String(), nil, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (e *EventsClient) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	var created models.Event
	if _, err := e.c.do(ctx, http.MethodPost, "/events", nil, event, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (e *EventsClient) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Event, error) {
	var event models.Event
	if _, err := e.c.do(ctx, http.MethodPatch, "/events/"+id.String(), nil, fields, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (e *EventsClient) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := e.c.do(ctx, http.MethodDelete, "/events/"+id.String(), nil, nil, nil)
	return err
}

type SpacesClient struct{ c *Client }

// MonthAvailability is the per-day calendar of a space. Days maps day of month
// to true when the space cannot be booked.
type MonthAvailability struct {
	SpaceID     uuid.UUID    `json:"space_id"`
	Year        int          `json:"year"`
	Month       int          `json:"month"`
	Days        map[int]bool `json:"days"`
	BookedDates []string     `json:"booked_dates"`
}

// Unavailable lists the unavailable days in ascending order.
func (m *MonthAvailability) Unavailable() []int {
	var out []int
	for day := 1; day <= 31; day++ {
		if m.Days[day] {
			out = append(out, day)
		}
	}
	return out
}

func (s *SpacesClient) List(ctx context.Context, opts ListOptions) (*Page[*models.EventSpace], error) {
	return list[*models.EventSpace](ctx, s.c, "/event-spaces", opts)
}

func (s *SpacesClient) Get(ctx context.Context, id uuid.UUID) (*models.EventSpace, error) {
	var space models.EventSpace
	if _, err := s.c.do(ctx, http.MethodGet, "/event-spaces/"+id.String(), nil, nil, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

func (s *SpacesClient) Availability(ctx context.Context, id uuid.UUID, year, month int) (*MonthAvailability, error) {
	if month < 1 || month > 12 {
		return nil, &ValidationError{Field: "month", Message: "month must be between 1 and 12"}
	}
	q := url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(month)}}
	var avail MonthAvailability
	if _, err := s.c.do(ctx, http.MethodGet, "/event-spaces/"+id.String()+"/availability", q, nil, &avail); err != nil {
		return nil, err
	}
	return &avail, nil
}

func (s *SpacesClient) Create(ctx context.Context, space *models.EventSpace) (*models.EventSpace, error) {
	var created models.EventSpace
	if _, err := s.c.do(ctx, http.MethodPost, "/event-spaces", nil, space, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *SpacesClient) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.EventSpace, error) {
	var space models.EventSpace
	if _, err := s.c.do(ctx, http.MethodPatch, "/event-spaces/"+id.String(), nil, fields, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

func (s *SpacesClient) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.c.do(ctx, http.MethodDelete, "/event-spaces/"+id.String(), nil, nil, nil)
	return err
}

type ServicesClient struct{ c *Client }

func (s *ServicesClient) List(ctx context.Context, opts ListOptions) (*Page[*models.Service], error) {
	return list[*models.Service](ctx, s.c, "/services", opts)
}

func (s *ServicesClient) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if _, err := s.c.do(ctx, http.MethodGet, "/services/"+id.String(), nil, nil, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (s *ServicesClient) Create(ctx context.Context, service *models.Service) (*models.Service, error) {
	var created models.Service
	if _, err := s.c.do(ctx, http.MethodPost, "/services", nil, service, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *ServicesClient) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Service, error) {
	var service models.Service
	if _, err := s.c.do(ctx, http.MethodPatch, "/services/"+id.String(), nil, fields, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (s *ServicesClient) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.c.do(ctx, http.MethodDelete, "/services/"+id.String(), nil, nil, nil)
	return err
}
