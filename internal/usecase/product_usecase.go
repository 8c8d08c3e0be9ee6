package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"

	"github.com/shopspring/decimal"
)

const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, tx repo.TransactionManager) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo, tx: tx}
}

// GET /productsの入力
type ListProductsInput struct {
	Page     int
	PerPage  int
	Q        string
	Category string
	Sort     string
}

type ProductListOutput struct {
	Items      []model.Product `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	return u.list(ctx, in, false)
}

// 管理画面用。非公開商品も含む
func (u *ProductUsecase) AdminListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	return u.list(ctx, in, true)
}

func (u *ProductUsecase) list(ctx context.Context, in ListProductsInput, includeInactive bool) (ProductListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.PerPage == 0 {
		in.PerPage = DefaultPerPage
	}
	if in.Page < 1 {
		return ProductListOutput{}, Validation("invalid page")
	}
	if in.PerPage < 1 || in.PerPage > MaxPerPage {
		return ProductListOutput{}, Validation("invalid per_page")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, Validation("q too long")
	}
	switch in.Sort {
	case "", repo.ProductSortID, repo.ProductSortPriceAsc, repo.ProductSortPriceDesc:
	default:
		return ProductListOutput{}, Validation("invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:            in.Page,
		Limit:           in.PerPage,
		Q:               strings.TrimSpace(in.Q),
		Category:        strings.TrimSpace(in.Category),
		Sort:            in.Sort,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return ProductListOutput{}, Internal(err)
	}

	return ProductListOutput{
		Items:      items,
		Total:      total,
		Page:       in.Page,
		PerPage:    in.PerPage,
		TotalPages: int((total + int64(in.PerPage) - 1) / int64(in.PerPage)),
	}, nil
}

// 非公開・削除済みは存在しない扱い
func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, Validation("invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NotFound("product not found")
	}
	if err != nil {
		return model.Product{}, Internal(err)
	}
	if !p.IsActive {
		return model.Product{}, NotFound("product not found")
	}
	return p, nil
}

func (u *ProductUsecase) Categories(ctx context.Context) ([]string, error) {
	cats, err := u.productRepo.Categories(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"max=50"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url,max=200"`
	IsActive    bool            `json:"is_active"`
	// 作成時のみ使う
	StockQuantity int64 `json:"stock_quantity" validate:"gte=0"`
}

func (in ProductInput) validate() error {
	if err := validator.Struct(in); err != nil {
		return Invalid(err)
	}
	if in.Price.IsNegative() {
		return Invalid(validator.FieldErrors{"price": "must be at least 0"})
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return Invalid(validator.FieldErrors{"price": "must have at most 2 decimal places"})
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, Unauthorized("unauthorized")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:          strings.TrimSpace(in.Name),
			Description:   in.Description,
			Price:         in.Price.Round(2),
			StockQuantity: in.StockQuantity,
			Category:      strings.TrimSpace(in.Category),
			ImageURL:      in.ImageURL,
			IsActive:      in.IsActive,
		})
		if err != nil {
			return Internal(err)
		}
		created = p
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateProduct, model.AuditResourceProduct, p.ID, nil, p)
	})
	if err != nil {
		return model.Product{}, err
	}
	return created, nil
}

// 在庫は変えない。在庫はAdminUpdateInventoryで
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductInput) error {
	if adminUserID <= 0 {
		return Unauthorized("unauthorized")
	}
	if productID <= 0 {
		return Validation("invalid product id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("product not found")
		}
		if err != nil {
			return Internal(err)
		}

		after := before
		after.Name = strings.TrimSpace(in.Name)
		after.Description = in.Description
		after.Price = in.Price.Round(2)
		after.Category = strings.TrimSpace(in.Category)
		after.ImageURL = in.ImageURL
		after.IsActive = in.IsActive

		if err := r.Products().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFound("product not found")
			}
			return Internal(err)
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, before, after)
	})
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return Unauthorized("unauthorized")
	}
	if productID <= 0 {
		return Validation("invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().SoftDelete(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("product not found")
		}
		if err != nil {
			return Internal(err)
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, nil, nil)
	})
}

type InventoryInput struct {
	StockQuantity int64  `json:"stock_quantity" validate:"gte=0"`
	Reason        string `json:"reason" validate:"required,max=255"`
}

// 在庫を「現在値」に更新し、調整履歴と監査ログを残す
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, in InventoryInput) error {
	if adminUserID <= 0 {
		return Unauthorized("unauthorized")
	}
	if productID <= 0 {
		return Validation("invalid product id")
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validator.Struct(in); err != nil {
		return Invalid(err)
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		locked, err := r.Products().ListForUpdate(ctx, []int64{productID})
		if err != nil {
			return Internal(err)
		}
		if len(locked) == 0 {
			return NotFound("product not found")
		}
		before := locked[0].StockQuantity

		if err := r.Inventory().SetStock(ctx, productID, in.StockQuantity); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFound("product not found")
			}
			return Internal(err)
		}

		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       in.StockQuantity - before,
			Reason:      in.Reason,
		}); err != nil {
			return Internal(err)
		}

		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateStock, model.AuditResourceProduct, productID,
			map[string]int64{"stock_quantity": before},
			map[string]int64{"stock_quantity": in.StockQuantity},
		)
	})
}

// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
func writeAudit(ctx context.Context, r repo.TxRepos, actor int64, action model.AuditAction, rt model.AuditResourceType, id int64, before, after any) error {
	log := model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: rt,
		ResourceID:   id,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    time.Now(),
	}
	if err := r.AuditLogs().Create(ctx, log); err != nil {
		return Internal(err)
	}
	return nil
}

func toJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
