package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	// Productをプリロードして返す(削除済み商品も含む)
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 他人のカートの明細はErrNotFound
	FindInCart(ctx context.Context, cartID int64, cartItemID int64) (model.CartItem, error)
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
}
