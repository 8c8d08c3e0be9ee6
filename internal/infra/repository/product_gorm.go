package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 検索/カテゴリ/ソート/ページング付きの一覧
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	page, limit := normalizePage(q.Page, q.Limit, 12, 100)
	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if !q.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}

	// name/descriptionの部分一致。大文字小文字は区別しない
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		tx = tx.Where("category = ?", c)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, translate(err, "count products")
	}

	switch q.Sort {
	case repo.ProductSortPriceAsc:
		tx = tx.Order("price asc").Order("id asc")
	case repo.ProductSortPriceDesc:
		tx = tx.Order("price desc").Order("id asc")
	default:
		tx = tx.Order("id asc")
	}

	offset := (page - 1) * limit
	if err := tx.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, translate(err, "list products")
	}

	return products, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translate(err, "find product")
	}
	return p, nil
}

// チェックアウト用。デッドロックを避けるためid順でロック
func (r *ProductGormRepository) ListForUpdate(ctx context.Context, ids []int64) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "lock products")
	}
	return products, nil
}

func (r *ProductGormRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct().
		Order("category asc").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, translate(err, "list categories")
	}
	return cats, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translate(err, "create product")
	}
	return p, nil
}

// 在庫はInventoryRepository経由でのみ変える
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"image_url":   p.ImageURL,
		"is_active":   p.IsActive,
	})
	if res.Error != nil {
		return translate(res.Error, "update product")
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
