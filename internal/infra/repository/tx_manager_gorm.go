package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	tx *gorm.DB
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.tx) }
func (r *txReposGorm) Carts() repo.CartRepository           { return NewCartGormRepository(r.tx) }
func (r *txReposGorm) CartItems() repo.CartItemRepository   { return NewCartItemGormRepository(r.tx) }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return NewInventoryGormRepository(r.tx) }
func (r *txReposGorm) Products() repo.ProductRepository     { return NewProductGormRepository(r.tx) }
func (r *txReposGorm) Users() repo.UserRepository           { return NewUserGormRepository(r.tx) }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository   { return NewAuditLogGormRepository(r.tx) }
func (r *txReposGorm) Categories() repo.CategoryRepository  { return NewCategoryGormRepository(r.tx) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(&txReposGorm{tx: tx})
	})
}

var (
	_ repo.ProductRepository   = (*ProductGormRepository)(nil)
	_ repo.InventoryRepository = (*InventoryGormRepository)(nil)
	_ repo.CartRepository      = (*CartGormRepository)(nil)
	_ repo.CartItemRepository  = (*CartItemGormRepository)(nil)
	_ repo.OrderRepository     = (*OrderGormRepository)(nil)
	_ repo.OrderItemRepository = (*OrderItemGormRepository)(nil)
	_ repo.CategoryRepository  = (*CategoryGormRepository)(nil)
	_ repo.DashboardRepository = (*DashboardGormRepository)(nil)
	_ repo.TransactionManager  = (*TxManagerGorm)(nil)
)
