// Package seed creates the schema and loads sample catalog data.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	"storefront/internal/validator"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:embed products.json
var sampleProducts []byte

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Summary struct {
	ProductsCreated   int
	CategoriesCreated int
	AdminCreated    bool
	TotalProducts   int64
	TotalUsers      int64
}

type productRecord struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
}

// 商品が1件も無いときだけサンプルを入れる。管理者も同様にユーザーが居なければ作る
func Init(ctx context.Context, gdb *gorm.DB, hasher PasswordHasher, admin config.AdminSeedConfig) (Summary, error) {
	var s Summary
	if err := db.AutoMigrate(gdb); err != nil {
		return s, err
	}

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if count == 0 {
			products, err := loadProducts()
			if err != nil {
				return err
			}
			if err := tx.Create(&products).Error; err != nil {
				return fmt.Errorf("create products: %w", err)
			}
			s.ProductsCreated = len(products)
		}

		// 商品に付いているカテゴリ名を管理画面用に登録する
		if err := tx.Model(&model.Category{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if count == 0 {
			var names []string
			if err := tx.Model(&model.Product{}).Where("category <> ''").Distinct().Order("category asc").Pluck("category", &names).Error; err != nil {
				return fmt.Errorf("list product categories: %w", err)
			}
			if len(names) > 0 {
				categories := make([]model.Category, 0, len(names))
				for _, n := range names {
					categories = append(categories, model.Category{Name: n, IsActive: true})
				}
				if err := tx.Create(&categories).Error; err != nil {
					return fmt.Errorf("create categories: %w", err)
				}
				s.CategoriesCreated = len(categories)
			}
		}

		if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if count == 0 && admin.Password != "" {
			user, err := newAdmin(hasher, admin)
			if err != nil {
				return err
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			s.AdminCreated = true
		}

		if err := tx.Model(&model.Product{}).Count(&s.TotalProducts).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Count(&s.TotalUsers).Error
	})
	return s, err
}

// 全テーブルを消してからInit
func Reset(ctx context.Context, gdb *gorm.DB, hasher PasswordHasher, admin config.AdminSeedConfig) (Summary, error) {
	tables := model.All()
	slices.Reverse(tables)
	if err := gdb.WithContext(ctx).Migrator().DropTable(tables...); err != nil {
		return Summary{}, fmt.Errorf("drop tables: %w", err)
	}
	return Init(ctx, gdb, hasher, admin)
}

func loadProducts() ([]model.Product, error) {
	var records []productRecord
	if err := json.Unmarshal(sampleProducts, &records); err != nil {
		return nil, fmt.Errorf("parse sample products: %w", err)
	}

	out := make([]model.Product, 0, len(records))
	for _, r := range records {
		out = append(out, model.Product{
			Name:          r.Name,
			Description:   r.Description,
			Price:         r.Price,
			StockQuantity: r.StockQuantity,
			Category:      r.Category,
			ImageURL:      r.ImageURL,
			IsActive:      true,
		})
	}
	return out, nil
}

func newAdmin(hasher PasswordHasher, admin config.AdminSeedConfig) (model.User, error) {
	in := struct {
		Username string `json:"username" validate:"required,min=3,max=80,username"`
		Email    string `json:"email" validate:"required,email,max=120"`
		Password string `json:"password" validate:"required,min=8,max=72,notweak"`
	}{
		Username: strings.TrimSpace(admin.Username),
		Email:    strings.ToLower(strings.TrimSpace(admin.Email)),
		Password: admin.Password,
	}
	if err := validator.Struct(in); err != nil {
		return model.User{}, fmt.Errorf("admin account: %w", err)
	}

	hashed, err := hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash admin password: %w", err)
	}
	return model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		FirstName:    "Admin",
		LastName:     "User",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}, nil
}
