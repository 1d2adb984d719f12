package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
)

type stubAdminApptRepo struct {
	byID    map[string]*models.Appointment
	created []*models.Appointment
	updated []*models.Appointment
	deleted []string
}

func (s *stubAdminApptRepo) List(_ context.Context, _ models.AppointmentFilter) ([]models.Appointment, int, error) {
	var out []models.Appointment
	for _, appt := range s.byID {
		out = append(out, *appt)
	}
	return out, len(out), nil
}

func (s *stubAdminApptRepo) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	appt, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return appt, nil
}

func (s *stubAdminApptRepo) Create(_ context.Context, appt *models.Appointment) error {
	appt.ID = "new"
	s.created = append(s.created, appt)
	return nil
}

func (s *stubAdminApptRepo) Update(_ context.Context, appt *models.Appointment) error {
	s.updated = append(s.updated, appt)
	return nil
}

func (s *stubAdminApptRepo) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type recordingValidator struct {
	err        error
	excludeIDs []string
}

func (r *recordingValidator) ValidateSlot(_ context.Context, _, _ string, _ time.Time, excludeID string) error {
	r.excludeIDs = append(r.excludeIDs, excludeID)
	return r.err
}

func appointmentFixture() (*AppointmentService, *stubAdminApptRepo, *recordingValidator, *stubInvalidator) {
	repo := &stubAdminApptRepo{byID: map[string]*models.Appointment{}}
	checker := &recordingValidator{}
	cache := &stubInvalidator{}
	return NewAppointmentService(repo, checker, cache, nil, nil), repo, checker, cache
}

func TestCreateBlockRequiresOrderedPeriod(t *testing.T) {
	svc, repo, _, cache := appointmentFixture()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	block, err := svc.CreateBlock(context.Background(), CreateBlockRequest{
		ProviderID: "p1",
		Start:      start,
		End:        start.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, block.IsUnavailable)
	require.Len(t, repo.created, 1)
	assert.Len(t, cache.patterns, 1)

	_, err = svc.CreateBlock(context.Background(), CreateBlockRequest{
		ProviderID: "p1",
		Start:      start,
		End:        start,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRescheduleExcludesSelfFromSlotCheck(t *testing.T) {
	svc, repo, checker, _ := appointmentFixture()
	oldStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo.byID["a1"] = &models.Appointment{
		ID:            "a1",
		ProviderID:    "p1",
		ServiceID:     sql.NullString{String: "s1", Valid: true},
		StartDatetime: oldStart,
		EndDatetime:   oldStart.Add(time.Hour),
	}

	newStart := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	appt, err := svc.Reschedule(context.Background(), "a1", RescheduleRequest{Start: newStart})
	require.NoError(t, err)
	assert.Equal(t, newStart, appt.StartDatetime)
	assert.Equal(t, newStart.Add(time.Hour), appt.EndDatetime)
	assert.Equal(t, []string{"a1"}, checker.excludeIDs)
	require.Len(t, repo.updated, 1)
}

func TestRescheduleRejectsTakenSlot(t *testing.T) {
	svc, repo, checker, _ := appointmentFixture()
	checker.err = appErrors.Clone(appErrors.ErrSlotUnavailable, "")
	oldStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo.byID["a1"] = &models.Appointment{
		ID:            "a1",
		ProviderID:    "p1",
		ServiceID:     sql.NullString{String: "s1", Valid: true},
		StartDatetime: oldStart,
		EndDatetime:   oldStart.Add(time.Hour),
	}

	_, err := svc.Reschedule(context.Background(), "a1", RescheduleRequest{Start: oldStart.Add(time.Hour)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestRescheduleUnknownAppointment(t *testing.T) {
	svc, _, _, _ := appointmentFixture()

	_, err := svc.Reschedule(context.Background(), "ghost", RescheduleRequest{Start: time.Now()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeleteInvalidatesProviderCache(t *testing.T) {
	svc, repo, _, cache := appointmentFixture()
	repo.byID["a1"] = &models.Appointment{ID: "a1", ProviderID: "p1"}

	require.NoError(t, svc.Delete(context.Background(), "a1"))
	assert.Equal(t, []string{"a1"}, repo.deleted)
	assert.Len(t, cache.patterns, 1)
}
