package middleware

import (
	"net/http"
	"time"

	"storefront/internal/logger"
	"storefront/internal/metrics"

	"github.com/labstack/echo/v4"
)

// アクセスログ。5xxはerror、4xxはwarnで出す
func Logging(logg *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// echoのHTTPErrorなどをここでレスポンスにする
				c.Error(err)
			}
			if logg == nil {
				return nil
			}

			req := c.Request()
			status := c.Response().Status
			fields := map[string]any{
				"method":      req.Method,
				"path":        req.URL.Path,
				"route":       c.Path(),
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"ip":          c.RealIP(),
			}
			if id, ok := UserID(c); ok {
				fields["user_id"] = id
			}
			ctx := logg.WithFields(req.Context(), fields)

			switch {
			case status >= http.StatusInternalServerError:
				logg.Error(ctx, "request.complete", err)
			case status >= http.StatusBadRequest:
				logg.Warn(ctx, "request.complete")
			default:
				logg.Info(ctx, "request.complete")
			}
			return nil
		}
	}
}

// ルート単位でリクエスト数とレイテンシを記録
func Metrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			m.Observe(c.Request().Method, c.Path(), c.Response().Status, time.Since(start))
			return nil
		}
	}
}

// パニックを500にする
func Recoverer(logg *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					if logg != nil {
						ctx := logg.WithFields(c.Request().Context(), map[string]any{"panic": rec})
						logg.Error(ctx, "panic.recovered", nil)
					}
					err = c.JSON(http.StatusInternalServerError, errorJSON("INTERNAL", "internal error"))
				}
			}()
			return next(c)
		}
	}
}
