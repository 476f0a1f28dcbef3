package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/recharge-backend/internal/platform/ctxutil"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderTraceID   = "X-Trace-Id"

	maxRequestIDLen = 128
)

// RequestIDs tags the request with a request id and a trace id and echoes
// both back. An active span wins over a caller-supplied trace id.
func RequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}
		traceID := ""
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		}
		if traceID == "" {
			traceID = strings.TrimSpace(c.GetHeader(HeaderTraceID))
		}
		if traceID == "" {
			traceID = reqID
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequest(c.Request.Context(), &ctxutil.RequestMeta{
			RequestID: reqID,
			TraceID:   traceID,
		}))
		c.Header(HeaderRequestID, reqID)
		c.Header(HeaderTraceID, traceID)
		c.Next()
	}
}

// RequestLogger writes one line per request. Health checks log at debug.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		ctx := c.Request.Context()
		if m := ctxutil.RequestFrom(ctx); m != nil {
			kv = append(kv, "request_id", m.RequestID, "trace_id", m.TraceID)
		}
		if id := ctxutil.GetIdentity(ctx); id != nil && id.Email != "" {
			kv = append(kv, "email", id.Email, "identity_source", id.Source)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request", kv...)
		case status >= 400:
			log.Warn("request", kv...)
		case route == "/healthcheck" || route == "/metrics":
			log.Debug("request", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}

func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}
