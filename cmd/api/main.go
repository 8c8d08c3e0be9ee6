package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/infra/redis"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "storefront-api"}).Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gdb, err := db.Connect(cfg.DB, logg, cfg.App.IsDev())
	if err != nil {
		logg.Error(ctx, "failed to connect database", err)
		os.Exit(1)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(gdb); err != nil {
			logg.Error(ctx, "failed to migrate database", err)
			os.Exit(1)
		}
	}

	// REDIS_URLが無ければレート制限なしで起動する
	var limiter middleware.RateLimitStore
	if cfg.Redis.URL != "" {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to connect redis", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		limiter = redisClient
	} else {
		logg.Warn(ctx, "REDIS_URL not set, rate limiting disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := server.NewApp(server.Deps{
		Config:      cfg,
		DB:          gdb,
		Logger:      logg,
		RateLimiter: limiter,
		Registry:    reg,
	})

	srv := server.New(cfg.App.Port, app.Router(), logg)
	if err := srv.Run(ctx); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
