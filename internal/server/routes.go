package server

import (
	"context"
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestBodyLimit = "1M"

// Router builds the echo instance with every route registered.
func (a *App) Router() *echo.Echo {
	cfg := a.deps.Config
	logg := a.deps.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logg)

	e.Use(middleware.Recoverer(logg))
	e.Use(middleware.RequestID(logg))
	e.Use(middleware.Logging(logg))
	e.Use(middleware.Metrics(a.http))
	e.Use(echomw.BodyLimit(requestBodyLimit))

	e.GET("/healthz", a.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.deps.Registry, promhttp.HandlerOpts{})))

	// ストアフロントはトークンが無くても使える。
	// 期限切れ・古いトークンは匿名扱いなので/auth/refreshや/auth/loginも通る
	site := e.Group("",
		middleware.CartSession(a.sessions, logg),
		middleware.OptionalAuthJWT(cfg.Auth.JWTSecret),
		middleware.TokenVersionGuard(a.users),
	)
	requireUser := middleware.RequireUser()

	loginPolicy, registerPolicy, cartPolicy := rateLimits(cfg.RateLimit)
	limiter := a.deps.RateLimiter

	a.Products.RegisterRoutes(site)
	a.Carts.RegisterRoutes(site, middleware.RateLimit(cartPolicy, limiter, logg), requireUser)
	a.Auth.RegisterRoutes(site.Group("/auth"), handler.AuthRateLimits{
		Login:    middleware.RateLimit(loginPolicy, limiter, logg),
		Register: middleware.RateLimit(registerPolicy, limiter, logg),
	}, requireUser)
	a.Orders.RegisterRoutes(site.Group("/orders", requireUser))
	a.Addresses.RegisterRoutes(site.Group("/addresses", requireUser))

	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := site.Group("/admin", requireUser, middleware.AdminRoleGuard())
	a.AdminProducts.RegisterRoutes(admin)
	a.AdminOrders.RegisterRoutes(admin)
	a.AdminUsers.RegisterRoutes(admin)
	a.AdminCatalog.RegisterRoutes(admin)

	return e
}

// DB(とRedis)に届くか
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readHeaderTimeout)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok"}
	code := http.StatusOK

	if sqlDB, err := a.deps.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["status"], status["database"] = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}
	if p, ok := a.deps.RateLimiter.(interface{ Ping(context.Context) error }); ok {
		status["redis"] = "ok"
		if err := p.Ping(ctx); err != nil {
			// Redisが落ちてもレート制限が止まるだけ
			status["redis"] = "unreachable"
		}
	}
	return c.JSON(code, status)
}
