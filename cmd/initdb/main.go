package main

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/logger"
	"storefront/internal/seed"
	auth "storefront/internal/usecase/auth_usecase"

	"golang.org/x/crypto/bcrypt"
)

// usage: initdb [init|reset]
func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-initdb", Format: "console"})
	ctx := context.Background()

	cmd := "init"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if cmd != "init" && cmd != "reset" {
		fmt.Fprintln(os.Stderr, "usage: initdb [init|reset]")
		os.Exit(2)
	}

	cfg, err := config.LoadSeed()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	gdb, err := db.Connect(cfg.DB, logg, false)
	if err != nil {
		logg.Error(ctx, "failed to connect database", err)
		os.Exit(1)
	}

	hasher := auth.NewBcryptPasswordHasher(bcrypt.DefaultCost)
	run := seed.Init
	if cmd == "reset" {
		run = seed.Reset
	}

	s, err := run(ctx, gdb, hasher, cfg.Admin)
	if err != nil {
		logg.Error(ctx, "initdb failed", err)
		os.Exit(1)
	}
	if cfg.Admin.Password == "" {
		logg.Warn(ctx, "ADMIN_PASSWORD not set, admin user was not created")
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"command":          cmd,
		"products_created":   s.ProductsCreated,
		"categories_created": s.CategoriesCreated,
		"admin_created":      s.AdminCreated,
		"total_products":     s.TotalProducts,
		"total_users":        s.TotalUsers,
	}), "initdb.complete")
}
