package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// ユーザー名・メールのどちらでも引ける
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	List(ctx context.Context, page int, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
