package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/repository"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
	"github.com/imanubhardwaj/easyappointments/pkg/jobs"
)

type stubBookingApptRepo struct {
	booked    []*models.Appointment
	bookErr   error
	byHash    map[string]*models.Appointment
	deleted   []string
	deleteErr error
}

func (s *stubBookingApptRepo) BookAtomically(_ context.Context, appt *models.Appointment, _ int) error {
	if s.bookErr != nil {
		return s.bookErr
	}
	if appt.ID == "" {
		appt.ID = "appt-1"
	}
	s.booked = append(s.booked, appt)
	return nil
}

func (s *stubBookingApptRepo) FindByHash(_ context.Context, hash string) (*models.Appointment, error) {
	appt, ok := s.byHash[hash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return appt, nil
}

func (s *stubBookingApptRepo) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubCustomerRepo struct {
	byEmail map[string]*models.Customer
	created []*models.Customer
}

func (s *stubCustomerRepo) FindByEmail(_ context.Context, email string) (*models.Customer, error) {
	c, ok := s.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (s *stubCustomerRepo) Create(_ context.Context, customer *models.Customer) error {
	customer.ID = "cust-1"
	s.created = append(s.created, customer)
	return nil
}

type stubSlotValidator struct {
	err   error
	calls []time.Time
}

func (s *stubSlotValidator) ValidateSlot(_ context.Context, _, _ string, start time.Time, _ string) error {
	s.calls = append(s.calls, start)
	return s.err
}

type stubInvalidator struct {
	patterns []string
}

func (s *stubInvalidator) DeleteByPattern(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

type stubQueue struct {
	jobs []jobs.Job
}

func (s *stubQueue) Enqueue(job jobs.Job) error {
	s.jobs = append(s.jobs, job)
	return nil
}

func bookingFixture() (*BookingService, *stubBookingApptRepo, *stubCustomerRepo, *stubSlotValidator, *stubInvalidator, *stubQueue) {
	appts := &stubBookingApptRepo{byHash: map[string]*models.Appointment{}}
	customers := &stubCustomerRepo{byEmail: map[string]*models.Customer{}}
	services := &stubServiceRepo{services: map[string]*models.Service{
		"s1": {ID: "s1", DurationMinutes: 60, AttendantsNumber: 1, AvailabilityType: models.AvailabilityFixed},
	}}
	checker := &stubSlotValidator{}
	cache := &stubInvalidator{}
	queue := &stubQueue{}
	svc := NewBookingService(appts, customers, services, checker, cache, queue, nil, nil)
	return svc, appts, customers, checker, cache, queue
}

func validBooking() BookingRequest {
	return BookingRequest{
		ProviderID: "p1",
		ServiceID:  "s1",
		Start:      "2026-03-02 11:00",
		Timezone:   "+02:00",
		Customer: BookingCustomer{
			FirstName: "Maria",
			LastName:  "Santos",
			Email:     "maria@example.com",
		},
	}
}

func TestBookCommitsAndNotifies(t *testing.T) {
	svc, appts, customers, checker, cache, queue := bookingFixture()

	result, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)

	// The customer-local 11:00 at +02:00 is 09:00 in the reference zone.
	wantStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, wantStart, result.Start)
	assert.Equal(t, wantStart.Add(time.Hour), result.End)
	assert.NotEmpty(t, result.Hash)
	assert.Equal(t, "p1", result.ProviderID)

	require.Len(t, checker.calls, 1)
	assert.Equal(t, wantStart, checker.calls[0])

	require.Len(t, appts.booked, 1)
	assert.Equal(t, result.Hash, appts.booked[0].Hash)
	assert.True(t, appts.booked[0].ServiceID.Valid)

	require.Len(t, customers.created, 1)
	assert.Equal(t, "cust-1", appts.booked[0].CustomerID.String)

	assert.Equal(t, []string{repository.ProviderAvailabilityPattern("p1")}, cache.patterns)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobBookingConfirmed, queue.jobs[0].Type)
}

func TestBookReusesKnownCustomer(t *testing.T) {
	svc, appts, customers, _, _, _ := bookingFixture()
	customers.byEmail["maria@example.com"] = &models.Customer{ID: "existing", Email: "maria@example.com"}

	_, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	assert.Empty(t, customers.created)
	assert.Equal(t, "existing", appts.booked[0].CustomerID.String)
}

func TestBookRejectsStaleSlot(t *testing.T) {
	svc, appts, _, checker, _, queue := bookingFixture()
	checker.err = appErrors.Clone(appErrors.ErrSlotUnavailable, "")

	_, err := svc.Book(context.Background(), validBooking())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErrors.FromError(err).Code)
	assert.Empty(t, appts.booked)
	assert.Empty(t, queue.jobs)
}

func TestBookMapsTransactionConflict(t *testing.T) {
	svc, _, _, _, cache, queue := bookingFixture()
	apptRepo := svc.appointments.(*stubBookingApptRepo)
	apptRepo.bookErr = repository.ErrBookingConflict

	_, err := svc.Book(context.Background(), validBooking())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErrors.FromError(err).Code)
	assert.Empty(t, cache.patterns)
	assert.Empty(t, queue.jobs)
}

func TestBookValidatesInput(t *testing.T) {
	svc, _, _, _, _, _ := bookingFixture()

	req := validBooking()
	req.Customer.Email = "not-an-email"
	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validBooking()
	req.Start = "2026-03-02T11:00:00Z"
	_, err = svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validBooking()
	req.ServiceID = "ghost"
	_, err = svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCancelByHash(t *testing.T) {
	svc, appts, _, _, cache, queue := bookingFixture()
	appts.byHash["tok"] = &models.Appointment{ID: "appt-9", ProviderID: "p1", Hash: "tok"}

	require.NoError(t, svc.CancelByHash(context.Background(), "tok"))
	assert.Equal(t, []string{"appt-9"}, appts.deleted)
	assert.Equal(t, []string{repository.ProviderAvailabilityPattern("p1")}, cache.patterns)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobBookingCancelled, queue.jobs[0].Type)
}

func TestCancelByHashUnknown(t *testing.T) {
	svc, _, _, _, _, _ := bookingFixture()

	err := svc.CancelByHash(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.CancelByHash(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
