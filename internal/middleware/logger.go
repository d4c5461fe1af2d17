package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/barber-api/internal/handler"
)

// Logger returns a middleware that logs HTTP requests. Bodies are never
// logged because invite tokens travel in them.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		logger := zerolog.Ctx(c.Request.Context())

		var event *zerolog.Event
		msg := "Request processed"
		switch {
		case status >= 500:
			event = logger.Error()
			msg = "Server error"
		case status >= 400:
			event = logger.Warn()
			msg = "Client error"
		default:
			event = logger.Info()
		}

		if p := handler.CurrentPrincipal(c); p != nil {
			event = event.Str("user_id", p.UserID.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
