package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
)

type catalogRepository interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error)
	FindByID(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, svc *models.Service) error
	Update(ctx context.Context, svc *models.Service) error
	Delete(ctx context.Context, id string) error
}

// CreateServiceRequest represents payload for creating bookable services.
type CreateServiceRequest struct {
	Name             string  `json:"name" validate:"required"`
	DurationMinutes  int     `json:"duration_minutes" validate:"required,min=5,max=1440"`
	AttendantsNumber int     `json:"attendants_number" validate:"required,min=1"`
	AvailabilityType string  `json:"availability_type" validate:"required,oneof=fixed flexible"`
	Price            float64 `json:"price" validate:"min=0"`
	Currency         string  `json:"currency" validate:"omitempty,len=3"`
	Description      string  `json:"description" validate:"omitempty,max=1000"`
}

// UpdateServiceRequest represents payload for updating bookable services.
type UpdateServiceRequest struct {
	Name             string  `json:"name" validate:"required"`
	DurationMinutes  int     `json:"duration_minutes" validate:"required,min=5,max=1440"`
	AttendantsNumber int     `json:"attendants_number" validate:"required,min=1"`
	AvailabilityType string  `json:"availability_type" validate:"required,oneof=fixed flexible"`
	Price            float64 `json:"price" validate:"min=0"`
	Currency         string  `json:"currency" validate:"omitempty,len=3"`
	Description      string  `json:"description" validate:"omitempty,max=1000"`
	Active           *bool   `json:"active"`
}

// CatalogService orchestrates the bookable-service catalog.
type CatalogService struct {
	repo      catalogRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo catalogRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, validator: validate, logger: logger}
}

// List returns services plus pagination data.
func (s *CatalogService) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, *models.Pagination, error) {
	services, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return services, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a service by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	return svc, nil
}

// Create registers a new bookable service.
func (s *CatalogService) Create(ctx context.Context, req CreateServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}

	svc := &models.Service{
		Name:             strings.TrimSpace(req.Name),
		DurationMinutes:  req.DurationMinutes,
		AttendantsNumber: req.AttendantsNumber,
		AvailabilityType: req.AvailabilityType,
		Price:            req.Price,
		Currency:         strings.ToUpper(strings.TrimSpace(req.Currency)),
		Description:      strings.TrimSpace(req.Description),
		Active:           true,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service")
	}
	return svc, nil
}

// Update modifies an existing bookable service.
func (s *CatalogService) Update(ctx context.Context, id string, req UpdateServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}

	svc.Name = strings.TrimSpace(req.Name)
	svc.DurationMinutes = req.DurationMinutes
	svc.AttendantsNumber = req.AttendantsNumber
	svc.AvailabilityType = req.AvailabilityType
	svc.Price = req.Price
	svc.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	svc.Description = strings.TrimSpace(req.Description)
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service")
	}
	return svc, nil
}

// Delete removes a bookable service.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete service")
	}
	return nil
}
