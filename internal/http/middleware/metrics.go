package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/recharge-backend/internal/observability"
)

// Metrics records rc_api_* series per route. Long-lived streams are counted
// in flight but kept out of the latency histogram.
func Metrics(m *observability.Metrics, streamRoutes ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	streams := make(map[string]struct{}, len(streamRoutes))
	for _, r := range streamRoutes {
		streams[r] = struct{}{}
	}
	return func(c *gin.Context) {
		m.ApiInflightInc()
		defer m.ApiInflightDec()
		start := time.Now()

		c.Next()

		route := routeOf(c)
		if _, ok := streams[route]; ok {
			return
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
