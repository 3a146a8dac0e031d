package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size.
// Report uploads go through the same limit, so it is sized from upload.max_file_size.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeFileTooLarge,
					"Request body exceeds maximum allowed size", c.GetString(logger.GinRequestIDKey)))
			return
		}

		// Streaming bodies without a Content-Length are cut off while reading
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
