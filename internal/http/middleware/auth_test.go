package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recharge-backend/internal/platform/logger"
	"github.com/yungbote/recharge-backend/internal/services"
)

func newAdminRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	am := NewAuthMiddleware(log, services.NewAdminAuthorizer(log, []string{"admin@example.com"}), "", secret)
	r := gin.New()
	r.Use(am.AttachIdentity())
	r.POST("/admin", am.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func signed(t *testing.T, secret, email string, method jwt.SigningMethod) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, IdentityClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRequireAdminWithHeader(t *testing.T) {
	r := newAdminRouter("")

	for _, tt := range []struct {
		email string
		want  int
	}{
		{"", http.StatusForbidden},
		{"nurse@example.com", http.StatusForbidden},
		{"Admin@Example.com", http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if tt.email != "" {
			req.Header.Set(DefaultIdentityHeader, tt.email)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.email)
	}
}

func TestRequireAdminWithJWT(t *testing.T) {
	const secret = "s3cret"
	r := newAdminRouter(secret)

	do := func(mutate func(*http.Request)) int {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		mutate(req)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do(func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+signed(t, secret, "admin@example.com", jwt.SigningMethodHS256))
	}))
	assert.Equal(t, http.StatusForbidden, do(func(req *http.Request) {
		req.Header.Set(DefaultIdentityHeader, "admin@example.com")
	}), "plain header is ignored when a secret is set")
	assert.Equal(t, http.StatusForbidden, do(func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+signed(t, "other", "admin@example.com", jwt.SigningMethodHS256))
	}))
	assert.Equal(t, http.StatusForbidden, do(func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+signed(t, secret, "admin@example.com", jwt.SigningMethodHS512))
	}))
}
