package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	err := r.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.CartItem{}, translate(err, "list cart items")
	}
	return items, nil
}

// cart_idも条件に入れて、他人の明細は見つからない扱いにする。
// 数量変更で在庫を見るのでProductも読む(削除済みも含む)
func (r *CartItemGormRepository) FindInCart(ctx context.Context, cartID int64, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("id = ? AND cart_id = ?", cartItemID, cartID).
		First(&item).Error
	if err != nil {
		return model.CartItem{}, translate(err, "find cart item")
	}
	return item, nil
}

func (r *CartItemGormRepository) FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return model.CartItem{}, translate(err, "find cart item")
	}
	return item, nil
}

func (r *CartItemGormRepository) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	if err := r.db.WithContext(ctx).Omit("Product").Create(&item).Error; err != nil {
		return model.CartItem{}, translate(err, "create cart item")
	}
	return item, nil
}

func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("quantity", qty)

	if res.Error != nil {
		return translate(res.Error, "update cart item")
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID)

	if res.Error != nil {
		return translate(res.Error, "delete cart item")
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
