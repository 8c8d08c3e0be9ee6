package usecase

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const dashboardRecentLimit = 5

type Dashboard struct {
	Stats        repo.DashboardStats `json:"stats"`
	RecentOrders []model.Order       `json:"recent_orders"`
	RecentUsers  []model.User        `json:"recent_users"`
}

type DashboardUsecase struct {
	dashboard repo.DashboardRepository
}

func NewDashboardUsecase(dashboard repo.DashboardRepository) *DashboardUsecase {
	return &DashboardUsecase{dashboard: dashboard}
}

// 件数と直近5件の注文・ユーザー
func (u *DashboardUsecase) Get(ctx context.Context) (Dashboard, error) {
	stats, err := u.dashboard.Stats(ctx)
	if err != nil {
		return Dashboard{}, Internal(err)
	}
	orders, err := u.dashboard.RecentOrders(ctx, dashboardRecentLimit)
	if err != nil {
		return Dashboard{}, Internal(err)
	}
	users, err := u.dashboard.RecentUsers(ctx, dashboardRecentLimit)
	if err != nil {
		return Dashboard{}, Internal(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	if users == nil {
		users = []model.User{}
	}
	return Dashboard{Stats: stats, RecentOrders: orders, RecentUsers: users}, nil
}
