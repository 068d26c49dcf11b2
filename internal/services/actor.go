package services

import (
	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	ID          uuid.UUID
	Role        string
	AccessToken string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// CanList reports whether the actor may publish listings.
func (a Actor) CanList() bool {
	switch a.Role {
	case models.RoleAdmin, models.RoleHost, models.RoleProvider:
		return true
	}
	return false
}

// owns reports whether the actor may modify a row owned by ownerID.
func (a Actor) owns(ownerID uuid.UUID) bool {
	return a.IsAdmin() || (a.ID != uuid.Nil && a.ID == ownerID)
}
