package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/barber-api/internal/handler"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

// DefaultMaxBodySize caps request bodies at 64KB; no endpoint accepts more.
const DefaultMaxBodySize int64 = 64 << 10

// BodyLimit rejects declared oversize bodies and caps the reader for the rest.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			handler.Fail(c, apperrors.TooLarge("request body too large"))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
