package middleware

import (
	"storefront/internal/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// X-Request-Idを引き継ぐか発行し、ロガーのcontextにも載せる
func RequestID(logg *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reqID := req.Header.Get(echo.HeaderXRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Response().Header().Set(echo.HeaderXRequestID, reqID)
			c.Set(CtxRequestIDKey, reqID)

			if logg != nil {
				ctx := logg.WithRequestID(req.Context(), reqID)
				c.SetRequest(req.WithContext(ctx))
			}
			return next(c)
		}
	}
}
