package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anon() usecase.Identity {
	return usecase.Identity{SessionID: uuid.NewString()}
}

func lineFor(t *testing.T, s usecase.CartSummary, productID int64) usecase.CartLine {
	t.Helper()
	for _, l := range s.Items {
		if l.ProductID == productID {
			return l
		}
	}
	t.Fatalf("no cart line for product %d", productID)
	return usecase.CartLine{}
}

func TestCart_Summary_NoCart_IsEmptyAndNotCreated(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	s, err := f.carts.Summary(ctx, anon())
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.TotalItems)
	assert.Equal(t, 0, s.TotalLines)
	assert.True(t, s.TotalPrice.IsZero())
	assert.NotNil(t, s.Items)

	var count int64
	require.NoError(t, f.db.Model(&model.Cart{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCart_AddThenUpdate_YieldsRequestedQuantity(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	p := f.product(t, "Teapot", "12.50", 5)

	for q := int64(1); q <= p.StockQuantity; q++ {
		id := anon()
		require.NoError(t, f.carts.AddItem(ctx, id, p.ID, 1))

		s, err := f.carts.Summary(ctx, id)
		require.NoError(t, err)
		line := lineFor(t, s, p.ID)

		require.NoError(t, f.carts.UpdateItem(ctx, id, line.ID, q))

		s, err = f.carts.Summary(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, q, lineFor(t, s, p.ID).Quantity)
	}
}

func TestCart_AddItem_NeverExceedsStock(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	p := f.product(t, "Kettle", "30.00", 5)
	id := anon()

	require.NoError(t, f.carts.AddItem(ctx, id, p.ID, 3))
	require.NoError(t, f.carts.AddItem(ctx, id, p.ID, 4))

	s, err := f.carts.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalLines)
	assert.Equal(t, int64(5), s.TotalItems)
	assert.True(t, s.TotalPrice.Equal(decimal.RequireFromString("150.00")))

	err = f.carts.AddItem(ctx, id, p.ID, 6)
	ae, ok := usecase.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, usecase.KindOutOfStock, ae.Kind)

	s, err = f.carts.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.TotalItems)
}

func TestCart_AddItem_Validation(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cup", "3.00", 5)
	id := anon()

	err := f.carts.AddItem(ctx, id, p.ID, 0)
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))

	err = f.carts.AddItem(ctx, id, 9999, 1)
	assert.True(t, usecase.IsKind(err, usecase.KindNotFound))

	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)
	err = f.carts.AddItem(ctx, id, p.ID, 1)
	assert.True(t, usecase.IsKind(err, usecase.KindNotFound))
}

func TestCart_UpdateItem_ClampsAndDeletes(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	p := f.product(t, "Spoon", "1.00", 4)
	id := anon()

	require.NoError(t, f.carts.AddItem(ctx, id, p.ID, 2))
	s, _ := f.carts.Summary(ctx, id)
	lineID := lineFor(t, s, p.ID).ID

	require.NoError(t, f.carts.UpdateItem(ctx, id, lineID, 100))
	s, _ = f.carts.Summary(ctx, id)
	assert.Equal(t, int64(4), s.TotalItems)

	require.NoError(t, f.carts.UpdateItem(ctx, id, lineID, 0))
	s, _ = f.carts.Summary(ctx, id)
	assert.Equal(t, 0, s.TotalLines)
}

func TestCart_UpdateItem_SoldOutIsOutOfStock(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	p := f.product(t, "Fork", "1.00", 4)
	id := anon()

	require.NoError(t, f.carts.AddItem(ctx, id, p.ID, 2))
	s, _ := f.carts.Summary(ctx, id)
	lineID := lineFor(t, s, p.ID).ID

	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("stock_quantity", 0).Error)

	err := f.carts.UpdateItem(ctx, id, lineID, 1)
	assert.True(t, usecase.IsKind(err, usecase.KindOutOfStock))

	s, _ = f.carts.Summary(ctx, id)
	assert.False(t, lineFor(t, s, p.ID).Available)
}

func TestCart_RemoveUnknownItem_NotFoundAndUnchanged(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	p := f.product(t, "Plate", "8.00", 10)
	id := anon()

	require.NoError(t, f.carts.AddItem(ctx, id, p.ID, 2))
	before, err := f.carts.Summary(ctx, id)
	require.NoError(t, err)

	err = f.carts.RemoveItem(ctx, id, 424242)
	assert.True(t, usecase.IsKind(err, usecase.KindNotFound))

	after, err := f.carts.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.TotalItems, after.TotalItems)
	assert.Equal(t, before.TotalLines, after.TotalLines)
}

func TestCart_OtherVisitorsLineIsNotFound(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	p := f.product(t, "Bowl", "6.00", 10)
	owner, other := anon(), anon()

	require.NoError(t, f.carts.AddItem(ctx, owner, p.ID, 1))
	s, _ := f.carts.Summary(ctx, owner)
	lineID := lineFor(t, s, p.ID).ID

	require.NoError(t, f.carts.AddItem(ctx, other, p.ID, 1))

	assert.True(t, usecase.IsKind(f.carts.RemoveItem(ctx, other, lineID), usecase.KindNotFound))
	assert.True(t, usecase.IsKind(f.carts.UpdateItem(ctx, other, lineID, 3), usecase.KindNotFound))

	s, _ = f.carts.Summary(ctx, owner)
	assert.Equal(t, int64(1), s.TotalItems)
}

func TestCart_ClearThenSummary_IsEmpty(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", "10.00", 10)
	b := f.product(t, "B", "5.00", 10)
	id := anon()

	require.NoError(t, f.carts.AddItem(ctx, id, a.ID, 2))
	require.NoError(t, f.carts.AddItem(ctx, id, b.ID, 1))
	require.NoError(t, f.carts.Clear(ctx, id))

	s, err := f.carts.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.TotalItems)

	// カートが無くてもエラーにしない
	require.NoError(t, f.carts.Clear(ctx, anon()))
}

func TestCart_MergeSessionCart(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	u := f.user(t, "merger")
	a := f.product(t, "A", "10.00", 3)
	b := f.product(t, "B", "5.00", 10)
	gone := f.product(t, "Gone", "1.00", 10)

	user := usecase.Identity{UserID: u.ID}
	session := anon()

	require.NoError(t, f.carts.AddItem(ctx, user, a.ID, 2))
	require.NoError(t, f.carts.AddItem(ctx, session, a.ID, 2))
	require.NoError(t, f.carts.AddItem(ctx, session, b.ID, 4))
	require.NoError(t, f.carts.AddItem(ctx, session, gone.ID, 1))
	require.NoError(t, f.db.Delete(&model.Product{}, gone.ID).Error)

	require.NoError(t, f.carts.MergeSessionCart(ctx, session.SessionID, u.ID))

	s, err := f.carts.Summary(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalLines)
	assert.Equal(t, int64(3), lineFor(t, s, a.ID).Quantity)
	assert.Equal(t, int64(4), lineFor(t, s, b.ID).Quantity)

	var count int64
	require.NoError(t, f.db.Model(&model.Cart{}).Where("session_id = ?", session.SessionID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// 匿名カートが無ければ何もしない
	require.NoError(t, f.carts.MergeSessionCart(ctx, session.SessionID, u.ID))
}
