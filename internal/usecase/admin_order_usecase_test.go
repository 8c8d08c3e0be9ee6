package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminOrderFixture() (*usecase.AdminOrderUsecase, *TxManagerMock, *OrderRepoMock, *InventoryRepoMock, *AuditRepoMock) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	inv := new(InventoryRepoMock)
	audit := new(AuditRepoMock)

	tx.Repos = &TxReposMock{orders: orders, inventory: inv, auditLogs: audit}
	tx.On("WithinTx", mock.Anything).Return(nil)

	return usecase.NewAdminOrderUsecase(orders, tx), tx, orders, inv, audit
}

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	uc, _, _, _, _ := newAdminOrderFixture()

	out, err := uc.List(context.Background(), usecase.AdminListOrdersInput{Page: -1})
	assert.Empty(t, out.Items)
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))
}

func TestAdminOrderUsecase_List_InvalidStatus(t *testing.T) {
	uc, _, _, _, _ := newAdminOrderFixture()

	_, err := uc.List(context.Background(), usecase.AdminListOrdersInput{Status: "PAID"})
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))
}

func TestAdminOrderUsecase_List_PassesFilter(t *testing.T) {
	uc, _, orders, _, _ := newAdminOrderFixture()

	f := repo.AdminOrderListFilter{Page: 2, Limit: 20, Status: "pending", Search: "ORD-2026"}
	orders.On("ListAdmin", mock.Anything, f).Return([]model.Order{{ID: 10}, {ID: 11}}, int64(22), nil)

	out, err := uc.List(context.Background(), usecase.AdminListOrdersInput{Page: 2, Status: "pending", Search: "  ORD-2026 "})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.TotalPages)
	orders.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_UnauthorizedActor(t *testing.T) {
	uc, _, _, _, _ := newAdminOrderFixture()

	err := uc.UpdateStatus(context.Background(), 0, 1, "confirmed")
	assert.True(t, usecase.IsKind(err, usecase.KindUnauthorized))
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	uc, _, _, _, _ := newAdminOrderFixture()

	err := uc.UpdateStatus(context.Background(), 1, 1, "XXX")
	assert.True(t, usecase.IsKind(err, usecase.KindValidation))
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	uc, _, orders, _, _ := newAdminOrderFixture()
	orders.On("FindByIDForUpdate", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	err := uc.UpdateStatus(context.Background(), 1, 99, "confirmed")
	assert.True(t, usecase.IsKind(err, usecase.KindNotFound))
	orders.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_SameStatus_NoOp(t *testing.T) {
	uc, _, orders, _, audit := newAdminOrderFixture()
	orders.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.Order{ID: 1, Status: model.OrderStatusConfirmed}, nil)

	err := uc.UpdateStatus(context.Background(), 1, 1, "CONFIRMED")
	assert.NoError(t, err)

	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_RejectsBackwardAndTerminal(t *testing.T) {
	cases := []struct {
		from model.OrderStatus
		to   string
	}{
		{model.OrderStatusShipped, "confirmed"},
		{model.OrderStatusShipped, "cancelled"},
		{model.OrderStatusDelivered, "shipped"},
		{model.OrderStatusCancelled, "pending"},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+tc.to, func(t *testing.T) {
			uc, _, orders, _, _ := newAdminOrderFixture()
			orders.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.Order{ID: 1, Status: tc.from}, nil)

			err := uc.UpdateStatus(context.Background(), 1, 1, tc.to)
			assert.True(t, usecase.IsKind(err, usecase.KindConflict), "err=%v", err)
			orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// cancel: confirmed -> cancelled のとき在庫戻し + audit
func TestAdminOrderUsecase_UpdateStatus_Cancel_RestoresStock_And_Audits(t *testing.T) {
	uc, _, orders, inv, audit := newAdminOrderFixture()

	adminID := int64(999)
	orderID := int64(50)

	orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(model.Order{
		ID:     orderID,
		Status: model.OrderStatusConfirmed,
		Items: []model.OrderItem{
			{OrderID: orderID, ProductID: 100, Quantity: 2},
			{OrderID: orderID, ProductID: 101, Quantity: 1},
		},
	}, nil)
	inv.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	inv.On("IncreaseStock", mock.Anything, int64(101), int64(1)).Return(nil)
	orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusConfirmed, model.OrderStatusCancelled).Return(nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		return a.ActorUserID == adminID &&
			a.Action == model.AuditActionUpdateOrderStatus &&
			a.ResourceType == model.AuditResourceOrder &&
			a.ResourceID == orderID &&
			a.BeforeJSON == `{"status":"confirmed"}` &&
			a.AfterJSON == `{"status":"cancelled"}`
	})).Return(nil)

	err := uc.UpdateStatus(context.Background(), adminID, orderID, "cancelled")
	assert.NoError(t, err)

	orders.AssertExpectations(t)
	inv.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// shipped は在庫を触らない
func TestAdminOrderUsecase_UpdateStatus_Ship_NoInventory(t *testing.T) {
	uc, _, orders, inv, audit := newAdminOrderFixture()

	orders.On("FindByIDForUpdate", mock.Anything, int64(7)).Return(model.Order{
		ID:     7,
		Status: model.OrderStatusConfirmed,
		Items:  []model.OrderItem{{ProductID: 100, Quantity: 2}},
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(7), model.OrderStatusConfirmed, model.OrderStatusShipped).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateStatus(context.Background(), 1, 7, "shipped")
	assert.NoError(t, err)

	inv.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNumberOfCalls(t, "Create", 1)
}

// 先に別の更新が入っていたら在庫を戻さずConflict
func TestAdminOrderUsecase_UpdateStatus_LostRace_NoRestock(t *testing.T) {
	uc, _, orders, inv, audit := newAdminOrderFixture()

	orders.On("FindByIDForUpdate", mock.Anything, int64(8)).Return(model.Order{
		ID:     8,
		Status: model.OrderStatusPending,
		Items:  []model.OrderItem{{ProductID: 100, Quantity: 3}},
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(8), model.OrderStatusPending, model.OrderStatusCancelled).Return(repo.ErrConflict)

	err := uc.UpdateStatus(context.Background(), 1, 8, "cancelled")
	assert.True(t, usecase.IsKind(err, usecase.KindConflict), "err=%v", err)

	inv.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
