package services

import (
	"github.com/joshua-takyi/evently/internal/models"
)

func checkPage(offset, limit int) error {
	if offset < 0 || limit <= 0 {
		return models.NewValidationError("", "invalid offset or limit")
	}
	return nil
}

// restrictFields rejects any key not in allowed.
func restrictFields(fields map[string]interface{}, allowed map[string]bool) error {
	if len(fields) == 0 {
		return models.NewValidationError("", "no fields to update")
	}
	for k := range fields {
		if !allowed[k] {
			return models.NewValidationError(k, "field cannot be updated")
		}
	}
	return nil
}
