package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"krankenhaus-matrix/internal/models"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, r *gin.Engine, header string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.InitJWT("access-secret", "refresh-secret", time.Minute, time.Hour)

	r := gin.New()
	r.GET("/", AuthMiddleware(), func(c *gin.Context) {
		assert.Equal(t, "leitstelle", c.GetString("username"))
		assert.Equal(t, models.RoleDispatcher, c.GetString("role"))
		c.Status(http.StatusNoContent)
	})

	token, err := utils.GenerateAccessToken(7, "leitstelle", models.RoleDispatcher)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, serve(t, r, "Bearer "+token))
	assert.Equal(t, http.StatusUnauthorized, serve(t, r, ""))
	assert.Equal(t, http.StatusUnauthorized, serve(t, r, "Token "+token))
	assert.Equal(t, http.StatusUnauthorized, serve(t, r, "Bearer kaputt"))
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		role string
		want int
	}{
		{models.RoleAdmin, http.StatusNoContent},
		{models.RoleDispatcher, http.StatusNoContent},
		{models.RoleHospital, http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) {
				if tt.role != "" {
					c.Set("role", tt.role)
				}
			}, RequireRole(models.RoleAdmin, models.RoleDispatcher), func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})
			assert.Equal(t, tt.want, serve(t, r, ""))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/", func(c *gin.Context) { c.Set("role", models.RoleDispatcher) }, RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusForbidden, serve(t, r, ""))
}
