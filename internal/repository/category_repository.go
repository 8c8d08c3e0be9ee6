package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CategoryRepository interface {
	// 名前順
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error
	// 削除されていない商品のうち、このカテゴリ名を持つ件数
	CountProducts(ctx context.Context, name string) (int64, error)
	// 商品のカテゴリ名をまとめて付け替える
	RenameProducts(ctx context.Context, from, to string) error
}
