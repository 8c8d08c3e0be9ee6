package usecase_test

import (
	"fmt"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	infra "storefront/internal/infra/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SQLiteに繋いだ本物のリポジトリで組み立てる
type storeFixture struct {
	db     *gorm.DB
	carts  *usecase.CartUsecase
	orders *usecase.OrderUsecase
	admin  *usecase.AdminOrderUsecase

	categories *usecase.CategoryUsecase
	dashboard  *usecase.DashboardUsecase
}

func newStoreFixture(t *testing.T) storeFixture {
	t.Helper()
	gdb := dbtest.New(t)

	tx := infra.NewTxManagerGorm(gdb)
	orders := infra.NewOrderGormRepository(gdb)

	return storeFixture{
		db:     gdb,
		carts:  usecase.NewCartUsecase(infra.NewCartGormRepository(gdb), infra.NewCartItemGormRepository(gdb), tx, nil),
		orders: usecase.NewOrderUsecase(orders, infra.NewAddressGormRepository(gdb), infra.NewUserGormRepository(gdb), tx, nil),
		admin:  usecase.NewAdminOrderUsecase(orders, tx),

		categories: usecase.NewCategoryUsecase(infra.NewCategoryGormRepository(gdb), tx),
		dashboard:  usecase.NewDashboardUsecase(infra.NewDashboardGormRepository(gdb)),
	}
}

func (f storeFixture) product(t *testing.T, name, price string, stock int64) model.Product {
	t.Helper()
	p := model.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Category:      "General",
		IsActive:      true,
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f storeFixture) user(t *testing.T, username string) model.User {
	t.Helper()
	u := model.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f storeFixture) stock(t *testing.T, productID int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, f.db.Unscoped().First(&p, productID).Error)
	return p.StockQuantity
}

func customer() usecase.CheckoutInput {
	return usecase.CheckoutInput{
		Name:    "Taro Yamada",
		Email:   "taro@example.com",
		Phone:   "090-1234-5678",
		Address: "1-2-3 Chiyoda, Tokyo",
	}
}
