package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/repository"
	"github.com/imanubhardwaj/easyappointments/internal/timeutil"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
	"github.com/imanubhardwaj/easyappointments/pkg/jobs"
)

const startLayout = "2006-01-02 15:04"

const (
	JobBookingConfirmed = "booking.confirmed"
	JobBookingCancelled = "booking.cancelled"
)

type bookingAppointmentRepo interface {
	BookAtomically(ctx context.Context, appt *models.Appointment, attendantsNumber int) error
	FindByHash(ctx context.Context, hash string) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
}

type bookingCustomerRepo interface {
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
}

type slotValidator interface {
	ValidateSlot(ctx context.Context, providerID, serviceID string, start time.Time, excludeAppointmentID string) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type notifier interface {
	Enqueue(job jobs.Job) error
}

// BookingCustomer is the customer block of a booking submission. Bookings
// are keyed on email: a known address reuses the existing record.
type BookingCustomer struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

// BookingRequest commits a previously queried slot. Start is the
// customer-local "YYYY-MM-DD HH:MM" wall-clock value; Timezone is the same
// signed offset the availability query used.
type BookingRequest struct {
	ProviderID string          `json:"provider_id" validate:"required"`
	ServiceID  string          `json:"service_id" validate:"required"`
	Start      string          `json:"start" validate:"required"`
	Timezone   string          `json:"timezone" validate:"required"`
	Customer   BookingCustomer `json:"customer" validate:"required"`
	Notes      string          `json:"notes"`
}

// BookingResult is returned on a successful commit. Hash is the management
// token the customer later presents to cancel.
type BookingResult struct {
	AppointmentID string    `json:"appointment_id"`
	Hash          string    `json:"hash"`
	ProviderID    string    `json:"provider_id"`
	ServiceID     string    `json:"service_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

// BookingService turns validated slot queries into persisted appointments.
// The commit path is guarded twice: an engine-level re-validation for a
// fast, user-friendly rejection, then the transactional re-check inside the
// insert for correctness under concurrency.
type BookingService struct {
	appointments bookingAppointmentRepo
	customers    bookingCustomerRepo
	services     availabilityServiceRepo
	availability slotValidator
	cache        cacheInvalidator
	queue        notifier
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBookingService instantiates BookingService. cache and queue may be
// nil; invalidation and notifications are then skipped.
func NewBookingService(
	appointments bookingAppointmentRepo,
	customers bookingCustomerRepo,
	services availabilityServiceRepo,
	availability slotValidator,
	cache cacheInvalidator,
	queue notifier,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		appointments: appointments,
		customers:    customers,
		services:     services,
		availability: availability,
		cache:        cache,
		queue:        queue,
		validator:    validate,
		logger:       logger,
	}
}

// Book commits a booking. The caller must already hold a concrete provider
// ID; the any-provider sentinel is resolved at query time and is not
// accepted here.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking")
	}

	offset, err := timeutil.ParseOffset(req.Timezone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timezone offset")
	}
	localStart, err := time.Parse(startLayout, req.Start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start, expected YYYY-MM-DD HH:MM")
	}
	start := offset.Invert(localStart)

	svc, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown service")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load service")
	}

	if err := s.availability.ValidateSlot(ctx, req.ProviderID, req.ServiceID, start, ""); err != nil {
		return nil, err
	}

	customer, err := s.upsertCustomer(ctx, req.Customer, offset.String())
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ProviderID:    req.ProviderID,
		ServiceID:     sql.NullString{String: svc.ID, Valid: true},
		CustomerID:    sql.NullString{String: customer.ID, Valid: true},
		StartDatetime: start,
		EndDatetime:   start.Add(svc.Duration()),
		Hash:          uuid.NewString(),
		Notes:         req.Notes,
	}

	if err := s.appointments.BookAtomically(ctx, appt, svc.AttendantsNumber); err != nil {
		if errors.Is(err, repository.ErrBookingConflict) {
			return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to store booking")
	}

	s.invalidateAvailability(ctx, appt.ProviderID)
	s.notify(JobBookingConfirmed, appt)

	s.logger.Info("booking committed",
		zap.String("appointment_id", appt.ID),
		zap.String("provider_id", appt.ProviderID),
		zap.String("service_id", svc.ID),
		zap.Time("start", appt.StartDatetime),
	)

	return &BookingResult{
		AppointmentID: appt.ID,
		Hash:          appt.Hash,
		ProviderID:    appt.ProviderID,
		ServiceID:     svc.ID,
		Start:         appt.StartDatetime,
		End:           appt.EndDatetime,
	}, nil
}

// CancelByHash deletes the appointment the management hash points at.
func (s *BookingService) CancelByHash(ctx context.Context, hash string) error {
	if hash == "" {
		return appErrors.Clone(appErrors.ErrValidation, "missing booking hash")
	}

	appt, err := s.appointments.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load booking")
	}

	if err := s.appointments.Delete(ctx, appt.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to cancel booking")
	}

	s.invalidateAvailability(ctx, appt.ProviderID)
	s.notify(JobBookingCancelled, appt)

	s.logger.Info("booking cancelled",
		zap.String("appointment_id", appt.ID),
		zap.String("provider_id", appt.ProviderID),
	)
	return nil
}

func (s *BookingService) upsertCustomer(ctx context.Context, in BookingCustomer, timezone string) (*models.Customer, error) {
	existing, err := s.customers.FindByEmail(ctx, in.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load customer")
	}

	customer := &models.Customer{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Timezone:  timezone,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create customer")
	}
	return customer, nil
}

func (s *BookingService) invalidateAvailability(ctx context.Context, providerID string) {
	if s.cache == nil {
		return
	}
	pattern := repository.ProviderAvailabilityPattern(providerID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *BookingService) notify(jobType string, appt *models.Appointment) {
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobType,
		Payload: appt,
	})
	if err != nil {
		s.logger.Warn("notification enqueue failed", zap.String("type", jobType), zap.Error(err))
	}
}
