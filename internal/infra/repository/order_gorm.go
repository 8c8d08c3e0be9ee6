package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	//明細はOrderItemRepositoryで作る
	if err := r.db.WithContext(ctx).Omit("Items").Create(&order).Error; err != nil {
		return model.Order{}, translate(err, "create order")
	}
	return order, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.withItems(ctx).Where("id = ?", orderID).First(&o).Error
	if err != nil {
		return model.Order{}, translate(err, "find order")
	}
	return o, nil
}

func (r *OrderGormRepository) FindByIDForUser(ctx context.Context, orderID int64, userID int64) (model.Order, error) {
	var o model.Order
	err := r.withItems(ctx).Where("id = ? AND user_id = ?", orderID, userID).First(&o).Error
	if err != nil {
		return model.Order{}, translate(err, "find order")
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	page, limit = normalizePage(page, limit, 10, 100)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, translate(err, "count orders")
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, translate(err, "list orders")
	}

	return items, total, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	page, limit := normalizePage(f.Page, f.Limit, 20, 100)

	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, translate(err, "count orders")
	}

	var items []model.Order
	offset := (page - 1) * limit
	if err := q.Order("created_at desc").Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, translate(err, "list orders")
	}

	return items, total, nil
}

// ステータス変更用。注文行をロックして読む
func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.withItems(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, orderID).Error
	if err != nil {
		return model.Order{}, translate(err, "lock order")
	}
	return o, nil
}

// 現在のステータスがfromのときだけ更新する。
// 先に別の更新が入っていればErrConflict
func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)

	if res.Error != nil {
		return translate(res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Count(&n).Error; err != nil {
			return translate(err, "update order status")
		}
		if n == 0 {
			return repo.ErrNotFound
		}
		return repo.ErrConflict
	}
	return nil
}

func (r *OrderGormRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id asc")
	})
}
