package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AdminOrderUsecase struct {
	orders repo.OrderRepository
	tx     repo.TransactionManager
}

func NewAdminOrderUsecase(orders repo.OrderRepository, tx repo.TransactionManager) *AdminOrderUsecase {
	return &AdminOrderUsecase{orders: orders, tx: tx}
}

type AdminListOrdersInput struct {
	Page    int
	PerPage int
	Status  string
	Search  string
}

// ステータス絞り込みと注文番号・氏名・メールの部分一致検索
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminListOrdersInput) (OrderListOutput, error) {
	page, perPage, err := pageParams(in.Page, in.PerPage, 20)
	if err != nil {
		return OrderListOutput{}, err
	}

	status := strings.TrimSpace(in.Status)
	if status != "" {
		if _, ok := model.ParseOrderStatus(status); !ok {
			return OrderListOutput{}, Validation("invalid status")
		}
	}

	items, total, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   page,
		Limit:  perPage,
		Status: status,
		Search: strings.TrimSpace(in.Search),
	})
	if err != nil {
		return OrderListOutput{}, Internal(err)
	}
	return newOrderList(items, total, page, perPage), nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (model.Order, error) {
	if orderID <= 0 {
		return model.Order{}, Validation("invalid order id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NotFound("order not found")
	}
	if err != nil {
		return model.Order{}, Internal(err)
	}
	return o, nil
}

// ステータスは前進のみ。cancelledにしたときは在庫を戻す。
// 同じステータスへの更新は何もしない
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, adminUserID int64, orderID int64, status string) error {
	if adminUserID <= 0 {
		return Unauthorized("unauthorized")
	}
	if orderID <= 0 {
		return Validation("invalid order id")
	}
	next, ok := model.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !ok {
		return Validation("invalid status")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("order not found")
		}
		if err != nil {
			return err
		}

		if o.Status == next {
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return Conflict(fmt.Sprintf("cannot change status from %s to %s", o.Status, next))
		}

		// 在庫戻しより先に遷移を確定させる。二重キャンセルはここで止まる
		if err := r.Orders().UpdateStatus(ctx, orderID, o.Status, next); err != nil {
			switch {
			case errors.Is(err, repo.ErrNotFound):
				return NotFound("order not found")
			case errors.Is(err, repo.ErrConflict):
				return Conflict("order status was changed concurrently")
			}
			return err
		}

		if next == model.OrderStatusCancelled {
			for _, it := range o.Items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			map[string]model.OrderStatus{"status": o.Status},
			map[string]model.OrderStatus{"status": next},
		)
	})
	return wrapInternal(err)
}
