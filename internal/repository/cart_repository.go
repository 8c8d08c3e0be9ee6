package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindBySessionID(ctx context.Context, sessionID string) (model.Cart, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	GetOrCreateBySessionID(ctx context.Context, sessionID string) (model.Cart, error)
	// 明細ごと削除
	Delete(ctx context.Context, cartID int64) error
	// 明細だけ削除
	Clear(ctx context.Context, cartID int64) error
}
