package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/pkg/auth"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
)

type stubProviderCRUDRepo struct {
	byID    map[string]*models.Provider
	created []*models.Provider
	updated []*models.Provider
}

func (s *stubProviderCRUDRepo) List(_ context.Context, _ models.ProviderFilter) ([]models.Provider, int, error) {
	var out []models.Provider
	for _, p := range s.byID {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (s *stubProviderCRUDRepo) FindByID(_ context.Context, id string) (*models.Provider, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (s *stubProviderCRUDRepo) Create(_ context.Context, provider *models.Provider) error {
	provider.ID = "p-new"
	s.created = append(s.created, provider)
	return nil
}

func (s *stubProviderCRUDRepo) Update(_ context.Context, provider *models.Provider) error {
	s.updated = append(s.updated, provider)
	return nil
}

func (s *stubProviderCRUDRepo) Delete(_ context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

func validProviderRequest() CreateProviderRequest {
	return CreateProviderRequest{
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Lima",
		Timezone:  "+01:00",
		WorkingPlan: models.WorkingPlan{
			"monday": workingDay("09:00", "17:00", models.Break{Start: "12:00", End: "13:00"}),
		},
		Password: "s3cret-pass",
	}
}

func TestCreateProviderHashesPassword(t *testing.T) {
	repo := &stubProviderCRUDRepo{byID: map[string]*models.Provider{}}
	svc := NewProviderService(repo, nil, nil)

	provider, err := svc.Create(context.Background(), validProviderRequest())
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.NotEqual(t, "s3cret-pass", provider.PasswordHash)
	assert.True(t, auth.VerifyPassword(provider.PasswordHash, "s3cret-pass"))
	assert.True(t, provider.Active)
}

func TestCreateProviderRejectsBadTimezone(t *testing.T) {
	svc := NewProviderService(&stubProviderCRUDRepo{byID: map[string]*models.Provider{}}, nil, nil)

	req := validProviderRequest()
	req.Timezone = "Europe/Lisbon"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateProviderRejectsInvertedPlan(t *testing.T) {
	svc := NewProviderService(&stubProviderCRUDRepo{byID: map[string]*models.Provider{}}, nil, nil)

	req := validProviderRequest()
	req.WorkingPlan = models.WorkingPlan{"monday": workingDay("17:00", "09:00")}
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req.WorkingPlan = models.WorkingPlan{"monday": workingDay("09:00", "17:00", models.Break{Start: "13:00", End: "12:00"})}
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateProviderAllowsDaysOff(t *testing.T) {
	repo := &stubProviderCRUDRepo{byID: map[string]*models.Provider{}}
	svc := NewProviderService(repo, nil, nil)

	req := validProviderRequest()
	req.WorkingPlan["sunday"] = &models.WorkingDay{}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestUpdateProviderKeepsPasswordWhenOmitted(t *testing.T) {
	repo := &stubProviderCRUDRepo{byID: map[string]*models.Provider{
		"p1": {ID: "p1", Email: "ana@example.com", PasswordHash: "existing-hash", Active: true},
	}}
	svc := NewProviderService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), "p1", UpdateProviderRequest{
		Email:       "ana@example.com",
		FirstName:   "Ana",
		LastName:    "Lima",
		Timezone:    "+01:00",
		WorkingPlan: models.WorkingPlan{"monday": workingDay("09:00", "17:00")},
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-hash", updated.PasswordHash)
	require.Len(t, repo.updated, 1)
}
