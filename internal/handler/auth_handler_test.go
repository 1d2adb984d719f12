package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/service"
	"github.com/imanubhardwaj/easyappointments/pkg/auth"
)

type authProviderRepoMock struct {
	provider *models.Provider
}

func (m *authProviderRepoMock) FindByEmail(ctx context.Context, email string) (*models.Provider, error) {
	if m.provider == nil || m.provider.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.provider, nil
}

func newLoginHandler(t *testing.T, provider *models.Provider) *AuthHandler {
	t.Helper()
	svc := service.NewAuthService(&authProviderRepoMock{provider: provider}, nil, nil, service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
	})
	return NewAuthHandler(svc)
}

func postLogin(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Login(c)
	return w
}

func TestAuthHandlerLogin(t *testing.T) {
	hash, err := auth.HashPassword("opensesame")
	require.NoError(t, err)
	h := newLoginHandler(t, &models.Provider{
		ID:           "p1",
		Email:        "jane@example.com",
		PasswordHash: hash,
		Active:       true,
	})

	w := postLogin(t, h, `{"email":"jane@example.com","password":"opensesame"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	hash, err := auth.HashPassword("opensesame")
	require.NoError(t, err)
	h := newLoginHandler(t, &models.Provider{
		ID:           "p1",
		Email:        "jane@example.com",
		PasswordHash: hash,
		Active:       true,
	})

	w := postLogin(t, h, `{"email":"jane@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	h := newLoginHandler(t, nil)

	w := postLogin(t, h, `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
