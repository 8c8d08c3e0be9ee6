package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"
)

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=2000"`
	// 省略時は有効
	IsActive *bool `json:"is_active"`
}

type CategoryUsecase struct {
	categories repo.CategoryRepository
	tx         repo.TransactionManager
}

// DI
func NewCategoryUsecase(categories repo.CategoryRepository, tx repo.TransactionManager) *CategoryUsecase {
	return &CategoryUsecase{categories: categories, tx: tx}
}

func (u *CategoryUsecase) AdminList(ctx context.Context) ([]model.Category, error) {
	items, err := u.categories.List(ctx)
	if err != nil {
		return []model.Category{}, Internal(err)
	}
	return items, nil
}

func (u *CategoryUsecase) AdminCreate(ctx context.Context, adminUserID int64, in CategoryInput) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, Unauthorized("unauthorized")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.Struct(in); err != nil {
		return model.Category{}, Invalid(err)
	}

	var created model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Categories().Create(ctx, model.Category{
			Name:        in.Name,
			Description: strings.TrimSpace(in.Description),
			IsActive:    in.IsActive == nil || *in.IsActive,
		})
		if errors.Is(err, repo.ErrConflict) {
			return Conflict("category name already exists")
		}
		if err != nil {
			return err
		}
		created = c
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateCategory, model.AuditResourceCategory, c.ID, nil, c)
	})
	if err != nil {
		return model.Category{}, wrapInternal(err)
	}
	return created, nil
}

// 名前を変えたら商品のカテゴリ名も同じトランザクションで付け替える
func (u *CategoryUsecase) AdminUpdate(ctx context.Context, adminUserID, categoryID int64, in CategoryInput) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, Unauthorized("unauthorized")
	}
	if categoryID <= 0 {
		return model.Category{}, Validation("invalid category id")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.Struct(in); err != nil {
		return model.Category{}, Invalid(err)
	}

	var updated model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Categories().FindByID(ctx, categoryID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("category not found")
		}
		if err != nil {
			return err
		}

		after := before
		after.Name = in.Name
		after.Description = strings.TrimSpace(in.Description)
		if in.IsActive != nil {
			after.IsActive = *in.IsActive
		}

		err = r.Categories().Update(ctx, after)
		if errors.Is(err, repo.ErrConflict) {
			return Conflict("category name already exists")
		}
		if err != nil {
			return err
		}
		if after.Name != before.Name {
			if err := r.Categories().RenameProducts(ctx, before.Name, after.Name); err != nil {
				return err
			}
		}
		updated = after
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateCategory, model.AuditResourceCategory, categoryID, before, after)
	})
	if err != nil {
		return model.Category{}, wrapInternal(err)
	}
	return updated, nil
}

// 商品が残っているカテゴリは消せない
func (u *CategoryUsecase) AdminDelete(ctx context.Context, adminUserID, categoryID int64) error {
	if adminUserID <= 0 {
		return Unauthorized("unauthorized")
	}
	if categoryID <= 0 {
		return Validation("invalid category id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Categories().FindByID(ctx, categoryID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("category not found")
		}
		if err != nil {
			return err
		}

		n, err := r.Categories().CountProducts(ctx, c.Name)
		if err != nil {
			return err
		}
		if n > 0 {
			return Conflict(fmt.Sprintf("category %s still has %d products", c.Name, n))
		}

		if err := r.Categories().Delete(ctx, categoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFound("category not found")
			}
			return err
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteCategory, model.AuditResourceCategory, categoryID, c, nil)
	})
	return wrapInternal(err)
}
