package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *CartGormRepository) FindBySessionID(ctx context.Context, sessionID string) (model.Cart, error) {
	return r.findOne(ctx, "session_id = ?", sessionID)
}

func (r *CartGormRepository) findOne(ctx context.Context, cond string, arg any) (model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&cart).Error; err != nil {
		return model.Cart{}, translate(err, "find cart")
	}
	return cart, nil
}

func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	uid := userID
	return r.getOrCreate(ctx, model.Cart{UserID: &uid}, "user_id = ?", userID)
}

func (r *CartGormRepository) GetOrCreateBySessionID(ctx context.Context, sessionID string) (model.Cart, error) {
	sid := sessionID
	return r.getOrCreate(ctx, model.Cart{SessionID: &sid}, "session_id = ?", sessionID)
}

// 同時作成に負けた場合はON CONFLICTで何もせず、既存行を読み直す
func (r *CartGormRepository) getOrCreate(ctx context.Context, newCart model.Cart, cond string, arg any) (model.Cart, error) {
	cart, err := r.findOne(ctx, cond, arg)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, err
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&newCart)
	if res.Error != nil {
		return model.Cart{}, translate(res.Error, "create cart")
	}
	if res.RowsAffected == 0 {
		return r.findOne(ctx, cond, arg)
	}
	return newCart, nil
}

func (r *CartGormRepository) Delete(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return translate(err, "delete cart items")
		}
		res := tx.Delete(&model.Cart{}, cartID)
		if res.Error != nil {
			return translate(res.Error, "delete cart")
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// 指定カートの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return translate(err, "clear cart")
	}
	return nil
}
