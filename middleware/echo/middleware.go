package echomw

import (
	"github.com/labstack/echo/v4"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/middleware"
)

// Bind decodes the request body into a fresh *T and stores it in the request
// context, or answers with an error payload when decoding fails.
func Bind[T any, PT middleware.Entity[T]](opts ...docbind.CallOption) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := middleware.DecodeNew[T, PT](c.Request(), opts...)
			if err != nil {
				return c.JSON(middleware.StatusFor(err), middleware.ErrorPayload(err))
			}
			ctx := middleware.ContextWithEntity(c.Request().Context(), v)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Get fetches the entity stored by Bind.
func Get[T any](c echo.Context) (*T, bool) {
	return middleware.EntityFromContext[T](c.Request().Context())
}

// Render writes obj in the format the request accepts.
func Render(c echo.Context, status int, obj any, opts ...docbind.CallOption) error {
	return middleware.Write(c.Response(), c.Request(), status, obj, opts...)
}
