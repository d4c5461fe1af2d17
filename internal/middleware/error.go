package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/barber-api/internal/handler"
)

// ErrorHandler answers requests that recorded errors with c.Error but wrote no response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		handler.Fail(c, c.Errors.Last().Err)
	}
}
