package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"reservation-system/models"
	"reservation-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxServiceNameLength = 100

// ServiceInput carries raw values so price and duration errors surface as constraint failures.
type ServiceInput struct {
	Name        string
	Description string
	Price       string
	Duration    string
}

// ServicePatch updates only the non-nil fields.
type ServicePatch struct {
	Name        *string
	Description *string
	Price       *string
	Duration    *string
}

// CatalogService manages service offerings. There is no ownership on services.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListServices returns every service in insertion order.
func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&services).Error; err != nil {
		return nil, NewInternalError("failed to retrieve services", err)
	}
	return services, nil
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := s.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "service")
	}
	return &service, nil
}

func (s *CatalogService) CreateService(ctx context.Context, in ServiceInput) (*models.Service, error) {
	service := &models.Service{}
	if err := applyServicePatch(service, ServicePatch{
		Name:        &in.Name,
		Description: &in.Description,
		Price:       &in.Price,
		Duration:    &in.Duration,
	}); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(service).Error; err != nil {
		return nil, NewInternalError("failed to create service", err)
	}
	return service, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, patch ServicePatch) (*models.Service, error) {
	service, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyServicePatch(service, patch); err != nil {
		return nil, err
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Service{}).
		Where("id = ?", service.ID).
		Updates(map[string]interface{}{
			"name":        service.Name,
			"description": service.Description,
			"price":       service.Price,
			"duration":    service.Duration,
			"updated_at":  now,
		})
	if result.Error != nil {
		return nil, NewInternalError("failed to update service", result.Error)
	}
	// Deleted since the lookup
	if result.RowsAffected == 0 {
		return nil, NewNotFoundError("service not found")
	}
	service.UpdatedAt = now
	return service, nil
}

// DeleteService removes the service together with its reservations and their feedback.
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservations := tx.Model(&models.Reservation{}).Select("id").Where("service_id = ?", id)
		if err := tx.Where("reservation_id IN (?)", reservations).Delete(&models.Feedback{}).Error; err != nil {
			return NewInternalError("failed to delete feedback", err)
		}
		if err := tx.Where("service_id = ?", id).Delete(&models.Reservation{}).Error; err != nil {
			return NewInternalError("failed to delete reservations", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Service{})
		if result.Error != nil {
			return NewInternalError("failed to delete service", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewNotFoundError("service not found")
		}
		return nil
	})
}

func applyServicePatch(service *models.Service, patch ServicePatch) error {
	fields := FieldErrors{}
	constraints := FieldErrors{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		switch {
		case name == "":
			fields["name"] = msgRequired
		case utf8.RuneCountInString(name) > maxServiceNameLength:
			fields["name"] = "Ensure this value has at most 100 characters."
		default:
			service.Name = name
		}
	}
	if patch.Description != nil {
		service.Description = *patch.Description
	}
	if patch.Price != nil {
		if strings.TrimSpace(*patch.Price) == "" {
			fields["price"] = msgRequired
		} else if price, err := utils.ParsePrice(*patch.Price); err != nil {
			constraints["price"] = "Enter a non-negative amount with at most 2 decimal places and 6 digits before the point."
		} else {
			service.Price = price
		}
	}
	if patch.Duration != nil {
		if strings.TrimSpace(*patch.Duration) == "" {
			fields["duration"] = msgRequired
		} else if duration, err := models.ParseDuration(*patch.Duration); err != nil || duration < 0 {
			constraints["duration"] = "Enter a valid duration, e.g. 01:00:00."
		} else {
			service.Duration = duration
		}
	}

	if len(fields) > 0 {
		for k, v := range constraints {
			fields[k] = v
		}
		return NewValidationError("invalid service", fields)
	}
	if len(constraints) > 0 {
		return NewConstraintError("invalid service", constraints)
	}
	return nil
}
