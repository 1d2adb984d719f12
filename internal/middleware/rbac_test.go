package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/imanubhardwaj/easyappointments/internal/models"
)

func performWithClaims(t *testing.T, claims *models.JWTClaims, path string, guard gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	r.GET("/providers/:id", guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRoleAdminPasses(t *testing.T) {
	claims := &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}
	w := performWithClaims(t, claims, "/providers/p1", RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleProviderOwnRecord(t *testing.T) {
	claims := &models.JWTClaims{UserID: "p1", Role: models.RoleProvider}
	w := performWithClaims(t, claims, "/providers/p1", RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleProviderForeignRecord(t *testing.T) {
	claims := &models.JWTClaims{UserID: "p1", Role: models.RoleProvider}
	w := performWithClaims(t, claims, "/providers/p2", RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleMissingClaims(t *testing.T) {
	w := performWithClaims(t, nil, "/providers/p1", RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
