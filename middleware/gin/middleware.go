package ginmw

import (
	"github.com/gin-gonic/gin"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/middleware"
)

// Bind decodes the request body into a fresh *T, stores it in the request
// context and continues the chain. Decoding failures abort with an error
// payload.
func Bind[T any, PT middleware.Entity[T]](opts ...docbind.CallOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := middleware.DecodeNew[T, PT](c.Request, opts...)
		if err != nil {
			c.AbortWithStatusJSON(middleware.StatusFor(err), middleware.ErrorPayload(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithEntity(c.Request.Context(), v))
		c.Next()
	}
}

// Get fetches the entity stored by Bind.
func Get[T any](c *gin.Context) (*T, bool) {
	return middleware.EntityFromContext[T](c.Request.Context())
}

// Render writes obj in the format the request accepts.
func Render(c *gin.Context, status int, obj any, opts ...docbind.CallOption) {
	if err := middleware.Write(c.Writer, c.Request, status, obj, opts...); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(middleware.StatusFor(err), middleware.ErrorPayload(err))
	}
}
