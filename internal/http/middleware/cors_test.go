package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		origins []string
		origin  string
	}{
		{nil, "http://localhost:5173"},
		{nil, "http://127.0.0.1:3000"},
		{[]string{"https://recharge.example.com"}, "https://recharge.example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tt.origins, DefaultIdentityHeader))
			r.OPTIONS("/api/admin/quests", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/admin/quests", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", DefaultIdentityHeader)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
