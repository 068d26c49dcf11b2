package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is a bookable offering from a provider (catering, photography, ...).
type Service struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProviderID  uuid.UUID `db:"provider_id" json:"provider_id"`
	Title       string    `db:"title" json:"title" validate:"required,min=2,max=120"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price" validate:"gte=0"`
	Category    string    `db:"category" json:"category" validate:"required"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ServiceRepo interface {
	CreateService(ctx context.Context, service *Service) (*Service, error)
	GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error)
	ListServices(ctx context.Context, filter ListFilter, offset, limit int) ([]*Service, int, error)
	UpdateService(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
}

func (su *SupabaseRepo) CreateService(ctx context.Context, service *Service) (*Service, error) {
	var created Service
	if err := su.insertOne(ServicesTable, service, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (su *SupabaseRepo) GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	var service Service
	if err := su.getByID(ServicesTable, id, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (su *SupabaseRepo) ListServices(ctx context.Context, filter ListFilter, offset, limit int) ([]*Service, int, error) {
	services := []*Service{}
	total, err := su.list(ServicesTable, filter, offset, limit, &services)
	if err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (su *SupabaseRepo) UpdateService(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*Service, error) {
	var service Service
	if err := su.updateByID(ServicesTable, id, fields, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (su *SupabaseRepo) DeleteService(ctx context.Context, id uuid.UUID) error {
	return su.deleteByID(ServicesTable, id)
}
