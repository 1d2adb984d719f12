package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/repository"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
)

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) error
	Update(ctx context.Context, appt *models.Appointment) error
	Delete(ctx context.Context, id string) error
}

// CreateBlockRequest represents payload for an unavailability block, a
// period the provider is blocked without a customer booking.
type CreateBlockRequest struct {
	ProviderID string    `json:"provider_id" validate:"required"`
	Start      time.Time `json:"start" validate:"required"`
	End        time.Time `json:"end" validate:"required"`
	Notes      string    `json:"notes" validate:"omitempty,max=1000"`
}

// RescheduleRequest represents payload for moving an existing appointment.
type RescheduleRequest struct {
	Start time.Time `json:"start" validate:"required"`
	Notes string    `json:"notes" validate:"omitempty,max=1000"`
}

// AppointmentService orchestrates the back-office appointment surface:
// listing, unavailability blocks and reschedules. Customer-facing commits
// go through BookingService instead.
type AppointmentService struct {
	repo         appointmentRepository
	availability slotValidator
	cache        cacheInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(
	repo appointmentRepository,
	availability slotValidator,
	cache cacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{
		repo:         repo,
		availability: availability,
		cache:        cache,
		validator:    validate,
		logger:       logger,
	}
}

// List returns appointments plus pagination data.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error) {
	appointments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return appointments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an appointment by id.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appt, nil
}

// CreateBlock stores an unavailability block. Blocks bypass slot
// validation: the provider is simply marking time off, and existing
// bookings inside the block stay untouched for manual follow-up.
func (s *AppointmentService) CreateBlock(ctx context.Context, req CreateBlockRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}
	if !req.Start.Before(req.End) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "block must start before it ends")
	}

	block := &models.Appointment{
		ProviderID:    req.ProviderID,
		StartDatetime: req.Start.UTC(),
		EndDatetime:   req.End.UTC(),
		IsUnavailable: true,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create block")
	}

	s.invalidate(ctx, block.ProviderID)
	return block, nil
}

// Reschedule moves an appointment to a new start, keeping its duration.
// The slot check excludes the appointment itself so it never conflicts
// with its own current position.
func (s *AppointmentService) Reschedule(ctx context.Context, id string, req RescheduleRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.IsUnavailable {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unavailability blocks cannot be rescheduled")
	}

	duration := appt.EndDatetime.Sub(appt.StartDatetime)
	start := req.Start.UTC()

	if appt.ServiceID.Valid {
		if err := s.availability.ValidateSlot(ctx, appt.ProviderID, appt.ServiceID.String, start, appt.ID); err != nil {
			return nil, err
		}
	}

	appt.StartDatetime = start
	appt.EndDatetime = start.Add(duration)
	if req.Notes != "" {
		appt.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
	}

	s.invalidate(ctx, appt.ProviderID)
	return appt, nil
}

// Delete removes an appointment or block.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete appointment")
	}

	s.invalidate(ctx, appt.ProviderID)
	return nil
}

func (s *AppointmentService) invalidate(ctx context.Context, providerID string) {
	if s.cache == nil {
		return
	}
	pattern := repository.ProviderAvailabilityPattern(providerID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
