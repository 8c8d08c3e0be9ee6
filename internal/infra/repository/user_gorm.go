package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) repo.UserRepository {
	return &userGormRepository{db: db}
}

func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err, "create user")
	}
	return nil
}

func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userGormRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username = ?", strings.TrimSpace(username))
}

func (r *userGormRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	login = strings.TrimSpace(login)
	return r.findOne(ctx, "username = ? OR email = ?", login, strings.ToLower(login))
}

func (r *userGormRepository) findOne(ctx context.Context, cond string, args ...any) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where(cond, args...).First(&u).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}

func (r *userGormRepository) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	page, limit = normalizePage(page, limit, 20, 100)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return []model.User{}, 0, translate(err, "count users")
	}
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id asc").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return []model.User{}, 0, translate(err, "list users")
	}
	return users, total, nil
}

func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return translate(err, "update user")
	}
	return nil
}

// token_versionを+1
func (r *userGormRepository) IncrementTokenVersion(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + ?", 1))

	if res.Error != nil {
		return translate(res.Error, "increment token version")
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
