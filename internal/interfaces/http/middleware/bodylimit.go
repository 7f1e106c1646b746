package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pohub/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at maxBytes. Declared oversize uploads are
// refused before the handler runs; chunked ones fail with
// *http.MaxBytesError when the handler reads past the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeFileTooLarge,
				fmt.Sprintf("request body of %d bytes exceeds the %d byte limit", c.Request.ContentLength, maxBytes),
				c.GetString("request_id"),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
