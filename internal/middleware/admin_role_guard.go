package middleware

import (
	"net/http"

	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextに入っているroleがADMINかどうかを確認
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := Role(c)
			if role == "" {
				return unauthorized(c)
			}
			if role != string(model.RoleAdmin) {
				return c.JSON(http.StatusForbidden, errorJSON("FORBIDDEN", "admin only"))
			}
			return next(c)
		}
	}
}
