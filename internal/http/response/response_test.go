package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/ctxutil"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

func TestFail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apierr.NotFound("quest_not_found", "unknown quest"), http.StatusNotFound, "quest_not_found"},
		{"forbidden", apierr.Forbidden("admin_required", "nope"), http.StatusForbidden, "admin_required"},
		{"wrapped", fmtWrap(apierr.Conflict("profession_exists", "dup")), http.StatusConflict, "profession_exists"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Fail(c, logger.Nop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotContains(t, env.Error.Message, "pq:")
		})
	}
}

func TestFailEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request = req.WithContext(ctxutil.WithRequest(req.Context(), &ctxutil.RequestMeta{RequestID: "req-1", TraceID: "t-1"}))

	Fail(c, logger.Nop(), apierr.Invalid("invalid_user_id", "bad id"))

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "req-1", env.Error.RequestID)
	assert.True(t, c.IsAborted())
	assert.Len(t, c.Errors, 1)
}

func fmtWrap(err error) error { return errors.Join(errors.New("create profession"), err) }
