package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	//注文番号・氏名・メールの部分一致
	Search string
	UserID *int64
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	// Itemsをプリロードする
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIDForUser(ctx context.Context, orderID int64, userID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	// 行ロック付き。Itemsもプリロードする
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	// 現在fromのときだけtoにする。他で変わっていればErrConflict
	UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) error
}
