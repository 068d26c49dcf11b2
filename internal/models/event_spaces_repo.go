package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// spaceRow mirrors the table, where PostGIS hands coordinates back as a string.
type spaceRow struct {
	EventSpace
	RawCoordinates *string `json:"coordinates"`
}

func (r spaceRow) toSpace() (*EventSpace, error) {
	space := r.EventSpace
	space.Coordinates = nil
	if r.RawCoordinates != nil && *r.RawCoordinates != "" {
		var c Coordinates
		if err := c.Scan(*r.RawCoordinates); err != nil {
			return nil, fmt.Errorf("failed to parse coordinates for space %s: %w", space.ID, err)
		}
		space.Coordinates = &c
	}
	return &space, nil
}

func spaceToRow(space *EventSpace) map[string]interface{} {
	row := map[string]interface{}{
		"id":            space.ID,
		"owner_id":      space.OwnerID,
		"name":          space.Name,
		"description":   space.Description,
		"location":      space.Location,
		"capacity":      space.Capacity,
		"price_per_day": space.PricePerDay,
		"amenities":     space.Amenities,
		"images":        space.Images,
		"rules":         space.Rules,
		"availability":  space.Availability,
		"status":        space.Status,
		"created_at":    space.CreatedAt,
		"updated_at":    space.UpdatedAt,
	}
	if space.Coordinates != nil {
		v, _ := space.Coordinates.Value()
		row["coordinates"] = v
	}
	return row
}

func (su *SupabaseRepo) CreateEventSpace(ctx context.Context, space *EventSpace) (*EventSpace, error) {
	var row spaceRow
	if err := su.insertOne(EventSpacesTable, spaceToRow(space), &row); err != nil {
		return nil, err
	}
	return row.toSpace()
}

func (su *SupabaseRepo) GetEventSpaceByID(ctx context.Context, id uuid.UUID) (*EventSpace, error) {
	var row spaceRow
	if err := su.getByID(EventSpacesTable, id, &row); err != nil {
		return nil, err
	}
	return row.toSpace()
}

func (su *SupabaseRepo) ListEventSpaces(ctx context.Context, filter ListFilter, offset, limit int) ([]*EventSpace, int, error) {
	var rows []spaceRow
	total, err := su.list(EventSpacesTable, filter, offset, limit, &rows)
	if err != nil {
		return nil, 0, err
	}
	spaces := make([]*EventSpace, 0, len(rows))
	for _, row := range rows {
		space, err := row.toSpace()
		if err != nil {
			return nil, 0, err
		}
		spaces = append(spaces, space)
	}
	return spaces, total, nil
}

func (su *SupabaseRepo) UpdateEventSpace(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*EventSpace, error) {
	processed := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if key == "coordinates" {
			coords, err := coordinatesFromValue(value)
			if err != nil {
				return nil, err
			}
			v, _ := coords.Value()
			processed[key] = v
			continue
		}
		processed[key] = value
	}

	var row spaceRow
	if err := su.updateByID(EventSpacesTable, id, processed, &row); err != nil {
		return nil, err
	}
	return row.toSpace()
}

func (su *SupabaseRepo) DeleteEventSpace(ctx context.Context, id uuid.UUID) error {
	return su.deleteByID(EventSpacesTable, id)
}

// coordinatesFromValue accepts a Coordinates value or a decoded JSON object.
func coordinatesFromValue(value interface{}) (Coordinates, error) {
	switch v := value.(type) {
	case Coordinates:
		return v, nil
	case *Coordinates:
		if v == nil {
			return Coordinates{}, NewValidationError("coordinates", "coordinates cannot be null")
		}
		return *v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Coordinates{}, NewValidationError("coordinates", "invalid coordinates")
		}
		var c Coordinates
		if err := json.Unmarshal(b, &c); err != nil {
			return Coordinates{}, NewValidationError("coordinates", "invalid coordinates")
		}
		return c, nil
	}
}
