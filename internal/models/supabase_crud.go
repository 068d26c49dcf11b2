package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// ListFilter narrows a table listing to rows whose columns equal the given values.
type ListFilter map[string]string

func (su *SupabaseRepo) insertOne(table string, row interface{}, out interface{}) error {
	raw, _, err := su.supabaseClient.From(table).
		Insert(row, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return decodeSingle(raw, out)
}

func (su *SupabaseRepo) getByID(table string, id uuid.UUID, out interface{}) error {
	raw, _, err := su.supabaseClient.From(table).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to get %s %s: %w", table, id, err)
	}
	if err := decodeSingle(raw, out); err != nil {
		return fmt.Errorf("%s %s: %w", table, id, err)
	}
	return nil
}

// list fills out (a pointer to a slice) with one page of rows, newest first.
func (su *SupabaseRepo) list(table string, filter ListFilter, offset, limit int, out interface{}) (int, error) {
	query := su.supabaseClient.From(table).Select("*", "exact", false)
	for column, value := range filter {
		query = query.Eq(column, value)
	}
	raw, count, err := query.
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return 0, fmt.Errorf("failed to unmarshal %s: %w", table, err)
	}
	return int(count), nil
}

func (su *SupabaseRepo) updateByID(table string, id uuid.UUID, fields map[string]interface{}, out interface{}) error {
	if len(fields) == 0 {
		return NewValidationError("", "no fields to update")
	}
	raw, count, err := su.supabaseClient.From(table).
		Update(fields, "representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", table, id, err)
	}
	if count == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return decodeSingle(raw, out)
}

func (su *SupabaseRepo) deleteByID(table string, id uuid.UUID) error {
	_, count, err := su.supabaseClient.From(table).
		Delete("", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", table, id, err)
	}
	if count == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

func jsonUnmarshal(raw []byte, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	return nil
}
