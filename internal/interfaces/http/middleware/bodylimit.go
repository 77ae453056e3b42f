package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groupclose/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request body size. Member trial balance uploads can be
// large, so the cap protects the server without blocking legitimate loads.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRequestTooLarge,
					"Request body exceeds maximum allowed size", c.GetString("request_id")))
			return
		}

		// MaxBytesReader covers chunked requests with no Content-Length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
