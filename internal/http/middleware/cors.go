package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the given origins, or the local dev defaults when none are
// configured.
func CORS(origins []string, identityHeader string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}
	headers := []string{"Authorization", "Content-Type", "X-Requested-With", HeaderRequestID}
	if identityHeader != "" {
		headers = append(headers, identityHeader)
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     headers,
		ExposeHeaders:    []string{HeaderTraceID, HeaderRequestID, "X-Quest-Set-Source"},
		AllowCredentials: true,
	})
}
