package repository

import (
	"context"

	"storefront/internal/domain/model"
)

const (
	ProductSortID        = "id"
	ProductSortPriceAsc  = "price_asc"
	ProductSortPriceDesc = "price_desc"
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
	//管理画面では非公開商品も含める
	IncludeInactive bool
}

type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// id昇順で行ロックを取る。存在しないIDは結果に含まれない
	ListForUpdate(ctx context.Context, ids []int64) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
