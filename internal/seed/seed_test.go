package seed_test

import (
	"context"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	"storefront/internal/seed"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var admin = config.AdminSeedConfig{Username: "admin", Email: "Admin@Example.com", Password: "correct-horse-battery"}

func TestInit_LoadsOnceAndCreatesAdmin(t *testing.T) {
	gdb := dbtest.New(t)
	hasher := auth.NewBcryptPasswordHasher(bcrypt.MinCost)
	ctx := context.Background()

	s, err := seed.Init(ctx, gdb, hasher, admin)
	require.NoError(t, err)
	assert.Equal(t, 8, s.ProductsCreated)
	assert.Equal(t, 5, s.CategoriesCreated)
	assert.True(t, s.AdminCreated)
	assert.EqualValues(t, 8, s.TotalProducts)
	assert.EqualValues(t, 1, s.TotalUsers)

	var names []string
	require.NoError(t, gdb.Model(&model.Category{}).Order("name asc").Pluck("name", &names).Error)
	assert.Equal(t, []string{"Accessories", "Kits", "Patterns", "Tools", "Yarn"}, names)

	var u model.User
	require.NoError(t, gdb.Where("username = ?", "admin").First(&u).Error)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.True(t, auth.NewBcryptPasswordVerifier().Verify(admin.Password, u.PasswordHash))

	again, err := seed.Init(ctx, gdb, hasher, admin)
	require.NoError(t, err)
	assert.Zero(t, again.ProductsCreated)
	assert.Zero(t, again.CategoriesCreated)
	assert.False(t, again.AdminCreated)
	assert.EqualValues(t, 8, again.TotalProducts)
}

func TestInit_WeakAdminPasswordRejected(t *testing.T) {
	gdb := dbtest.New(t)
	weak := admin
	weak.Password = "admin123"

	_, err := seed.Init(context.Background(), gdb, auth.NewBcryptPasswordHasher(bcrypt.MinCost), weak)
	require.Error(t, err)

	// ロールバックされて商品も残らない
	var count int64
	require.NoError(t, gdb.Model(&model.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReset_DropsExistingData(t *testing.T) {
	gdb := dbtest.New(t)
	hasher := auth.NewBcryptPasswordHasher(bcrypt.MinCost)
	ctx := context.Background()

	_, err := seed.Init(ctx, gdb, hasher, config.AdminSeedConfig{})
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&model.Product{Name: "Extra", StockQuantity: 1, IsActive: true}).Error)

	s, err := seed.Reset(ctx, gdb, hasher, config.AdminSeedConfig{})
	require.NoError(t, err)
	assert.Equal(t, 8, s.ProductsCreated)
	assert.False(t, s.AdminCreated)
	assert.EqualValues(t, 8, s.TotalProducts)
}
