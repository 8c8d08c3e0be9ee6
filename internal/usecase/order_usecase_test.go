package usecase_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderNumber_Format(t *testing.T) {
	now := time.Date(2026, 3, 4, 23, 30, 0, 0, time.FixedZone("JST", 9*60*60))
	n := usecase.NewOrderNumber(now)

	assert.Regexp(t, regexp.MustCompile(`^ORD-20260304-[0-9A-F]{8}$`), n)
	assert.NotEqual(t, n, usecase.NewOrderNumber(now))
}

func TestPlaceOrder_SnapshotsTotalsAndEmptiesCart(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	u := f.user(t, "buyer")
	a := f.product(t, "A", "10.00", 10)
	b := f.product(t, "B", "5.00", 10)
	id := usecase.Identity{UserID: u.ID}

	require.NoError(t, f.carts.AddItem(ctx, id, a.ID, 2))
	require.NoError(t, f.carts.AddItem(ctx, id, b.ID, 1))

	order, err := f.orders.PlaceOrder(ctx, u.ID, customer())
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.00")), "total=%s", order.TotalAmount)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, order.OrderNumber)

	s, err := f.carts.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.TotalItems)

	assert.Equal(t, int64(8), f.stock(t, a.ID))
	assert.Equal(t, int64(9), f.stock(t, b.ID))

	// 価格変更後も注文明細は変わらない
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", a.ID).Update("price", decimal.RequireFromString("99.00")).Error)

	got, err := f.orders.GetMyOrderDetail(ctx, u.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	for _, it := range got.Items {
		switch it.ProductID {
		case a.ID:
			assert.Equal(t, int64(2), it.Quantity)
			assert.True(t, it.Price.Equal(decimal.RequireFromString("10.00")))
			assert.Equal(t, "A", it.ProductNameSnapshot)
		case b.ID:
			assert.Equal(t, int64(1), it.Quantity)
			assert.True(t, it.Price.Equal(decimal.RequireFromString("5.00")))
		}
	}
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("25.00")))
}

func TestPlaceOrder_RequiresLogin(t *testing.T) {
	f := newStoreFixture(t)

	_, err := f.orders.PlaceOrder(context.Background(), 0, customer())
	assert.True(t, usecase.IsKind(err, usecase.KindUnauthorized))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newStoreFixture(t)
	u := f.user(t, "empty")

	_, err := f.orders.PlaceOrder(context.Background(), u.ID, customer())
	ae, ok := usecase.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ae.Kind)
	assert.Equal(t, "cart is empty", ae.Message)
}

func TestPlaceOrder_InvalidCustomerInfo(t *testing.T) {
	f := newStoreFixture(t)
	u := f.user(t, "sloppy")

	in := customer()
	in.Email = "not-an-email"
	in.Address = ""

	_, err := f.orders.PlaceOrder(context.Background(), u.ID, in)
	ae, ok := usecase.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, usecase.KindValidation, ae.Kind)
	assert.Contains(t, ae.Details, "email")
	assert.Contains(t, ae.Details, "address")
}

func TestPlaceOrder_ListsEveryShortageAndRollsBack(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	u := f.user(t, "greedy")
	a := f.product(t, "A", "10.00", 5)
	b := f.product(t, "B", "5.00", 5)
	c := f.product(t, "C", "1.00", 5)
	id := usecase.Identity{UserID: u.ID}

	require.NoError(t, f.carts.AddItem(ctx, id, a.ID, 3))
	require.NoError(t, f.carts.AddItem(ctx, id, b.ID, 4))
	require.NoError(t, f.carts.AddItem(ctx, id, c.ID, 1))

	// カート投入後に在庫が減った
	require.NoError(t, f.db.Model(&model.Product{}).Where("id IN ?", []int64{a.ID, b.ID}).Update("stock_quantity", 2).Error)

	_, err := f.orders.PlaceOrder(ctx, u.ID, customer())
	ae, ok := usecase.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, usecase.KindOutOfStock, ae.Kind)

	shortages, ok := ae.Details.([]usecase.StockShortage)
	require.True(t, ok)
	require.Len(t, shortages, 2)
	assert.Equal(t, int64(2), shortages[0].Available)

	var orders int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(0), orders)
	assert.Equal(t, int64(5), f.stock(t, c.ID))

	s, _ := f.carts.Summary(ctx, id)
	assert.Equal(t, 3, s.TotalLines)
}

func TestPlaceOrder_ConcurrentLastUnit_OnlyOneWins(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	last := f.product(t, "Last one", "42.00", 1)

	buyers := []model.User{f.user(t, "alice"), f.user(t, "bob")}
	for _, b := range buyers {
		require.NoError(t, f.carts.AddItem(ctx, usecase.Identity{UserID: b.ID}, last.ID, 1))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(buyers))
	for i, b := range buyers {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = f.orders.PlaceOrder(ctx, userID, customer())
		}(i, b.ID)
	}
	wg.Wait()

	var ok, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case usecase.IsKind(err, usecase.KindOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, int64(0), f.stock(t, last.ID))
}

func TestPlaceOrder_WithSavedAddress(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	u := f.user(t, "homebody")
	p := f.product(t, "Lamp", "20.00", 3)

	addr := model.Address{
		UserID: u.ID, Name: "Hanako", Phone: "0311112222", PostalCode: "100-0001",
		Region: "Tokyo", City: "Chiyoda", Line1: "1-1", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, f.db.Create(&addr).Error)
	require.NoError(t, f.carts.AddItem(ctx, usecase.Identity{UserID: u.ID}, p.ID, 1))

	order, err := f.orders.PlaceOrder(ctx, u.ID, usecase.CheckoutInput{AddressID: addr.ID})
	require.NoError(t, err)
	assert.Equal(t, "Hanako", order.CustomerName)
	assert.Equal(t, u.Email, order.CustomerEmail)
	assert.Equal(t, "1-1, Chiyoda, Tokyo, 100-0001", order.ShippingAddress)

	// 他人の住所は使えない
	other := f.user(t, "stranger")
	_, err = f.orders.PlaceOrder(ctx, other.ID, usecase.CheckoutInput{AddressID: addr.ID})
	assert.True(t, usecase.IsKind(err, usecase.KindNotFound))
}

func TestOrderHistory_ScopedToOwner(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	other := f.user(t, "other")
	p := f.product(t, "Book", "7.00", 10)

	var last model.Order
	for i := 0; i < 3; i++ {
		require.NoError(t, f.carts.AddItem(ctx, usecase.Identity{UserID: owner.ID}, p.ID, 1))
		o, err := f.orders.PlaceOrder(ctx, owner.ID, customer())
		require.NoError(t, err)
		last = o
	}

	list, err := f.orders.ListMyOrders(ctx, owner.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Items, 2)
	assert.Equal(t, last.ID, list.Items[0].ID)

	empty, err := f.orders.ListMyOrders(ctx, other.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	_, err = f.orders.GetMyOrderDetail(ctx, other.ID, last.ID)
	assert.True(t, usecase.IsKind(err, usecase.KindNotFound))
}

func TestAdminCancel_RestoresStock(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	u := f.user(t, "canceller")
	admin := f.user(t, "admin")
	p := f.product(t, "Vase", "15.00", 4)

	require.NoError(t, f.carts.AddItem(ctx, usecase.Identity{UserID: u.ID}, p.ID, 3))
	order, err := f.orders.PlaceOrder(ctx, u.ID, customer())
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.stock(t, p.ID))

	require.NoError(t, f.admin.UpdateStatus(ctx, admin.ID, order.ID, "confirmed"))
	require.NoError(t, f.admin.UpdateStatus(ctx, admin.ID, order.ID, "cancelled"))
	assert.Equal(t, int64(4), f.stock(t, p.ID))

	err = f.admin.UpdateStatus(ctx, admin.ID, order.ID, "shipped")
	assert.True(t, usecase.IsKind(err, usecase.KindConflict))

	var logs int64
	require.NoError(t, f.db.Model(&model.AuditLog{}).Where("resource_id = ?", order.ID).Count(&logs).Error)
	assert.Equal(t, int64(2), logs)
}
