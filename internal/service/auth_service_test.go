package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/pkg/auth"
	appErrors "github.com/imanubhardwaj/easyappointments/pkg/errors"
)

type stubAuthProviderRepo struct {
	byEmail map[string]*models.Provider
}

func (s *stubAuthProviderRepo) FindByEmail(_ context.Context, email string) (*models.Provider, error) {
	p, ok := s.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func authFixture(t *testing.T) (*AuthService, *stubAuthProviderRepo) {
	t.Helper()
	hash, err := auth.HashPassword("provider-pass")
	require.NoError(t, err)
	adminHash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)

	repo := &stubAuthProviderRepo{byEmail: map[string]*models.Provider{
		"ana@example.com": {ID: "p1", Email: "ana@example.com", PasswordHash: hash, Active: true},
	}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:            "test-secret",
		Expiration:        time.Hour,
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: adminHash,
	})
	return svc, repo
}

func TestLoginIssuesProviderToken(t *testing.T) {
	svc, _ := authFixture(t)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "provider-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, resp.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.UserID)
	assert.Equal(t, models.RoleProvider, claims.Role)
}

func TestLoginAdminFromConfig(t *testing.T) {
	svc, _ := authFixture(t)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "admin-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo := authFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	repo.byEmail["ana@example.com"].Active = false
	_, err = svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "provider-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := authFixture(t)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "provider-pass"})
	require.NoError(t, err)

	other := NewAuthService(&stubAuthProviderRepo{}, nil, nil, AuthConfig{Secret: "different-secret", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
