package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type DashboardStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalProducts   int64 `json:"total_products"`
	ActiveProducts  int64 `json:"active_products"`
	TotalCategories int64 `json:"total_categories"`
	TotalOrders     int64 `json:"total_orders"`
	PendingOrders   int64 `json:"pending_orders"`
}

// 管理画面トップの集計
type DashboardRepository interface {
	Stats(ctx context.Context) (DashboardStats, error)
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
	RecentUsers(ctx context.Context, limit int) ([]model.User, error)
}
