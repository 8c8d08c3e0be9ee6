package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type DashboardGormRepository struct {
	db *gorm.DB
}

func NewDashboardGormRepository(db *gorm.DB) *DashboardGormRepository {
	return &DashboardGormRepository{db: db}
}

// 商品数は論理削除済みを除く
func (r *DashboardGormRepository) Stats(ctx context.Context) (repo.DashboardStats, error) {
	var s repo.DashboardStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.TotalUsers, db.Model(&model.User{})},
		{&s.TotalProducts, db.Model(&model.Product{})},
		{&s.ActiveProducts, db.Model(&model.Product{}).Where("is_active = ?", true)},
		{&s.TotalCategories, db.Model(&model.Category{})},
		{&s.TotalOrders, db.Model(&model.Order{})},
		{&s.PendingOrders, db.Model(&model.Order{}).Where("status = ?", model.OrderStatusPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return repo.DashboardStats{}, translate(err, "dashboard stats")
		}
	}
	return s, nil
}

func (r *DashboardGormRepository) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	var out []model.Order
	err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit).Find(&out).Error
	if err != nil {
		return []model.Order{}, translate(err, "recent orders")
	}
	return out, nil
}

func (r *DashboardGormRepository) RecentUsers(ctx context.Context, limit int) ([]model.User, error) {
	var out []model.User
	err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit).Find(&out).Error
	if err != nil {
		return []model.User{}, translate(err, "recent users")
	}
	return out, nil
}
