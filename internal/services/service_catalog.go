package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/models"
)

var editableServiceFields = map[string]bool{
	"title": true, "description": true, "price": true, "category": true, "image_url": true,
}

// ServiceCatalog manages the bookable offerings of providers.
type ServiceCatalog struct {
	serviceRepo models.ServiceRepo
	uploader    ImageUploader
}

func NewServiceCatalog(serviceRepo models.ServiceRepo, uploader ImageUploader) *ServiceCatalog {
	return &ServiceCatalog{serviceRepo: serviceRepo, uploader: uploader}
}

func (sc *ServiceCatalog) CreateService(ctx context.Context, actor Actor, service *models.Service) (*models.Service, error) {
	if !actor.CanList() {
		return nil, fmt.Errorf("only providers can offer services: %w", models.ErrForbidden)
	}
	service.Title = helpers.StringTrim(service.Title)
	if err := models.Validate.Struct(service); err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	if service.ImageURL != "" {
		urls, err := uploadIfAny(ctx, sc.uploader, []string{service.ImageURL}, helpers.ServicesFolder)
		if err != nil {
			return nil, err
		}
		if len(urls) > 0 {
			service.ImageURL = urls[0]
		}
	}

	now := time.Now()
	service.ID = uuid.New()
	service.ProviderID = actor.ID
	service.CreatedAt = now
	service.UpdatedAt = now
	return sc.serviceRepo.CreateService(ctx, service)
}

func (sc *ServiceCatalog) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if id == uuid.Nil {
		return nil, models.NewValidationError("id", "invalid service ID")
	}
	return sc.serviceRepo.GetServiceByID(ctx, id)
}

func (sc *ServiceCatalog) ListServices(ctx context.Context, filter models.ListFilter, offset, limit int) ([]*models.Service, int, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, 0, err
	}
	return sc.serviceRepo.ListServices(ctx, filter, offset, limit)
}

func (sc *ServiceCatalog) UpdateService(ctx context.Context, actor Actor, id uuid.UUID, fields map[string]interface{}) (*models.Service, error) {
	if err := restrictFields(fields, editableServiceFields); err != nil {
		return nil, err
	}
	existing, err := sc.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(existing.ProviderID) {
		return nil, models.ErrForbidden
	}
	fields["updated_at"] = time.Now()
	return sc.serviceRepo.UpdateService(ctx, id, fields)
}

func (sc *ServiceCatalog) DeleteService(ctx context.Context, actor Actor, id uuid.UUID) error {
	existing, err := sc.GetService(ctx, id)
	if err != nil {
		return err
	}
	if !actor.owns(existing.ProviderID) {
		return models.ErrForbidden
	}
	return sc.serviceRepo.DeleteService(ctx, id)
}
