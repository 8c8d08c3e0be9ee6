package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type AddressRepository interface {
	Create(ctx context.Context, address model.Address) (model.Address, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
	Update(ctx context.Context, address model.Address) error
	Delete(ctx context.Context, addressID int64) error
	IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error)
	// 他の住所のデフォルトを外してから設定
	SetDefault(ctx context.Context, userID, addressID int64) error
}
