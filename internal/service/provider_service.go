package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/timeutil"
	"github.com/imanubhardwaj/easyappointments/pkg/auth"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
)

type providerRepository interface {
	List(ctx context.Context, filter models.ProviderFilter) ([]models.Provider, int, error)
	FindByID(ctx context.Context, id string) (*models.Provider, error)
	Create(ctx context.Context, provider *models.Provider) error
	Update(ctx context.Context, provider *models.Provider) error
	Delete(ctx context.Context, id string) error
}

// CreateProviderRequest represents payload for registering providers.
type CreateProviderRequest struct {
	Email       string             `json:"email" validate:"required,email"`
	FirstName   string             `json:"first_name" validate:"required"`
	LastName    string             `json:"last_name" validate:"required"`
	Phone       string             `json:"phone" validate:"omitempty,max=50"`
	Timezone    string             `json:"timezone" validate:"required"`
	WorkingPlan models.WorkingPlan `json:"working_plan" validate:"required"`
	ServiceIDs  []string           `json:"service_ids"`
	Password    string             `json:"password" validate:"required,min=8"`
}

// UpdateProviderRequest represents payload for updating providers.
type UpdateProviderRequest struct {
	Email       string             `json:"email" validate:"required,email"`
	FirstName   string             `json:"first_name" validate:"required"`
	LastName    string             `json:"last_name" validate:"required"`
	Phone       string             `json:"phone" validate:"omitempty,max=50"`
	Timezone    string             `json:"timezone" validate:"required"`
	WorkingPlan models.WorkingPlan `json:"working_plan" validate:"required"`
	ServiceIDs  []string           `json:"service_ids"`
	Password    string             `json:"password" validate:"omitempty,min=8"`
	Active      *bool              `json:"active"`
}

// ProviderService orchestrates provider account operations.
type ProviderService struct {
	repo      providerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProviderService constructs a ProviderService.
func NewProviderService(repo providerRepository, validate *validator.Validate, logger *zap.Logger) *ProviderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderService{repo: repo, validator: validate, logger: logger}
}

// List returns providers plus pagination data.
func (s *ProviderService) List(ctx context.Context, filter models.ProviderFilter) ([]models.Provider, *models.Pagination, error) {
	providers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list providers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return providers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a provider by id.
func (s *ProviderService) Get(ctx context.Context, id string) (*models.Provider, error) {
	provider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	return provider, nil
}

// Create registers a new provider record.
func (s *ProviderService) Create(ctx context.Context, req CreateProviderRequest) (*models.Provider, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provider payload")
	}
	if err := validateProviderFields(req.Timezone, req.WorkingPlan); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	provider := &models.Provider{
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Timezone:     req.Timezone,
		WorkingPlan:  req.WorkingPlan,
		ServiceIDs:   req.ServiceIDs,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.repo.Create(ctx, provider); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create provider")
	}
	return provider, nil
}

// Update modifies an existing provider.
func (s *ProviderService) Update(ctx context.Context, id string, req UpdateProviderRequest) (*models.Provider, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provider payload")
	}
	if err := validateProviderFields(req.Timezone, req.WorkingPlan); err != nil {
		return nil, err
	}

	provider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}

	provider.Email = strings.TrimSpace(req.Email)
	provider.FirstName = strings.TrimSpace(req.FirstName)
	provider.LastName = strings.TrimSpace(req.LastName)
	provider.Phone = strings.TrimSpace(req.Phone)
	provider.Timezone = req.Timezone
	provider.WorkingPlan = req.WorkingPlan
	provider.ServiceIDs = req.ServiceIDs
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		provider.PasswordHash = hash
	}
	if req.Active != nil {
		provider.Active = *req.Active
	}

	if err := s.repo.Update(ctx, provider); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update provider")
	}
	return provider, nil
}

// Delete removes a provider.
func (s *ProviderService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete provider")
	}
	return nil
}

// validateProviderFields rejects offsets and working plans the availability
// engine could not evaluate later.
func validateProviderFields(timezone string, plan models.WorkingPlan) error {
	if _, err := timeutil.ParseOffset(timezone); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "timezone must be a signed +HH:MM offset")
	}
	for day, wd := range plan {
		if !wd.Working() {
			continue
		}
		startMin, err := timeutil.ParseClock(*wd.Start)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "working plan day "+day+" has an invalid start")
		}
		endMin, err := timeutil.ParseClock(*wd.End)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "working plan day "+day+" has an invalid end")
		}
		if startMin >= endMin {
			return appErrors.Clone(appErrors.ErrValidation, "working plan day "+day+" must start before it ends")
		}
		for _, brk := range wd.Breaks {
			breakStart, err := timeutil.ParseClock(brk.Start)
			if err != nil {
				return appErrors.Clone(appErrors.ErrValidation, "working plan day "+day+" has an invalid break start")
			}
			breakEnd, err := timeutil.ParseClock(brk.End)
			if err != nil {
				return appErrors.Clone(appErrors.ErrValidation, "working plan day "+day+" has an invalid break end")
			}
			if breakStart >= breakEnd {
				return appErrors.Clone(appErrors.ErrValidation, "working plan day "+day+" has a break that must start before it ends")
			}
		}
	}
	return nil
}
