package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/ctxutil"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Fail writes err as an error envelope. Errors carrying an API status keep
// it; anything else is logged and hidden behind a 500.
func Fail(c *gin.Context, log *logger.Logger, err error) {
	_ = c.Error(err)
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		write(c, ae.Status, ae.Code, ae.Error())
		return
	}
	if log != nil {
		log.Error("unhandled error", "route", c.FullPath(), "error", err)
	}
	write(c, http.StatusInternalServerError, "internal_error", "internal error")
}

// BadRequest reports a body or query that could not be decoded.
func BadRequest(c *gin.Context, code string, err error) {
	msg := "bad request"
	if err != nil {
		msg = err.Error()
	}
	write(c, http.StatusBadRequest, code, msg)
}

func write(c *gin.Context, status int, code, msg string) {
	body := ErrorBody{Code: code, Message: msg}
	if c.Request != nil {
		if m := ctxutil.RequestFrom(c.Request.Context()); m != nil {
			body.RequestID = m.RequestID
		}
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}
