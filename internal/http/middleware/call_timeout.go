package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// CallTimeout bounds the request context so store calls give up after d.
// The events stream is long-lived and must be mounted outside it.
func CallTimeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
