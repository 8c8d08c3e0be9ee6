package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return []model.Category{}, translate(err, "list categories")
	}
	return out, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Category{}, translate(err, "find category")
	}
	return c, nil
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, translate(err, "create category")
	}
	return c, nil
}

// is_activeのfalseも書けるようにmapで更新
func (r *CategoryGormRepository) Update(ctx context.Context, c model.Category) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":        c.Name,
			"description": c.Description,
			"is_active":   c.IsActive,
		})
	if res.Error != nil {
		return translate(res.Error, "update category")
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CategoryGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete category")
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CategoryGormRepository) CountProducts(ctx context.Context, name string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category = ?", name).
		Count(&n).Error
	if err != nil {
		return 0, translate(err, "count category products")
	}
	return n, nil
}

// 論理削除済みの商品も付け替える
func (r *CategoryGormRepository) RenameProducts(ctx context.Context, from, to string) error {
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Product{}).
		Where("category = ?", from).
		Update("category", to).Error
	if err != nil {
		return translate(err, "rename category products")
	}
	return nil
}
