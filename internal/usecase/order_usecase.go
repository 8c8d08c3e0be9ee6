package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
	"storefront/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ORD-YYYYMMDD-XXXXXXXX。日付はUTC
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

type OrderUsecase struct {
	orders    repo.OrderRepository
	addresses repo.AddressRepository
	users     repo.UserRepository
	tx        repo.TransactionManager
	metrics   *metrics.ShopMetrics

	now         func() time.Time
	orderNumber func(time.Time) string
}

// DI
func NewOrderUsecase(
	orders repo.OrderRepository,
	addresses repo.AddressRepository,
	users repo.UserRepository,
	tx repo.TransactionManager,
	m *metrics.ShopMetrics,
) *OrderUsecase {
	return &OrderUsecase{
		orders:      orders,
		addresses:   addresses,
		users:       users,
		tx:          tx,
		metrics:     m,
		now:         time.Now,
		orderNumber: NewOrderNumber,
	}
}

// address_idを指定した場合は氏名・電話・住所を保存済み住所から取る
type CheckoutInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Address   string `json:"address" validate:"required,max=500"`
	AddressID int64  `json:"address_id"`
}

// チェックアウト。
// 1トランザクションで在庫ロック→再検証→注文作成→明細スナップショット→在庫減算→カートを空にする
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in CheckoutInput) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, Unauthorized("login required")
	}

	in, err := u.resolveCustomer(ctx, userID, in)
	if err != nil {
		return model.Order{}, err
	}

	var (
		placed model.Order
		units  int64
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return Validation("cart is empty")
		}
		if err != nil {
			return err
		}

		lines, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return Validation("cart is empty")
		}

		ids := make([]int64, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ProductID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		locked, err := r.Products().ListForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		products := make(map[int64]model.Product, len(locked))
		for _, p := range locked {
			products[p.ID] = p
		}

		// 足りない商品はまとめて返す
		var shortages []StockShortage
		for _, l := range lines {
			p, ok := products[l.ProductID]
			switch {
			case !ok || !p.IsActive:
				shortages = append(shortages, StockShortage{ProductID: l.ProductID, Name: l.Product.Name, Requested: l.Quantity, Available: 0})
			case l.Quantity > p.StockQuantity:
				shortages = append(shortages, StockShortage{ProductID: p.ID, Name: p.Name, Requested: l.Quantity, Available: p.StockQuantity})
			}
		}
		if len(shortages) > 0 {
			return OutOfStock(shortages...)
		}

		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(lines))
		units = 0
		for _, l := range lines {
			p := products[l.ProductID]
			item := model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				Quantity:            l.Quantity,
				Price:               p.Price,
			}
			total = total.Add(item.Subtotal())
			units += l.Quantity
			items = append(items, item)
		}

		uid := userID
		order, err := r.Orders().Create(ctx, model.Order{
			OrderNumber:     u.orderNumber(u.now()),
			UserID:          &uid,
			CustomerName:    in.Name,
			CustomerEmail:   in.Email,
			CustomerPhone:   in.Phone,
			ShippingAddress: in.Address,
			Status:          model.OrderStatusPending,
			TotalAmount:     total,
		})
		if err != nil {
			return err
		}

		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return err
		}

		for _, it := range items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				p := products[it.ProductID]
				return OutOfStock(StockShortage{ProductID: p.ID, Name: p.Name, Requested: it.Quantity, Available: p.StockQuantity})
			}
		}

		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		order.Items = items
		placed = order
		return nil
	})
	if err != nil {
		err = wrapInternal(err)
		u.metrics.IncCheckout(checkoutResult(err))
		return model.Order{}, err
	}

	u.metrics.IncCheckout(metrics.CheckoutSuccess)
	u.metrics.AddOrderedUnits(units)
	return placed, nil
}

// 入力を正規化し、保存済み住所の指定があれば展開してから検証する
func (u *OrderUsecase) resolveCustomer(ctx context.Context, userID int64, in CheckoutInput) (CheckoutInput, error) {
	if in.AddressID > 0 {
		addr, err := u.addresses.FindByID(ctx, in.AddressID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && addr.UserID != userID) {
			return in, NotFound("address not found")
		}
		if err != nil {
			return in, Internal(err)
		}
		in.Name = addr.Name
		in.Phone = addr.Phone
		in.Address = addr.Formatted()

		if strings.TrimSpace(in.Email) == "" {
			user, err := u.users.FindByID(ctx, userID)
			if errors.Is(err, repo.ErrNotFound) {
				return in, Unauthorized("user not found")
			}
			if err != nil {
				return in, Internal(err)
			}
			in.Email = user.Email
		}
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	if err := validator.Struct(in); err != nil {
		return in, Invalid(err)
	}
	return in, nil
}

func checkoutResult(err error) string {
	ae, ok := AsAppError(err)
	if !ok {
		return metrics.CheckoutError
	}
	switch {
	case ae.Kind == KindOutOfStock:
		return metrics.CheckoutOutOfStock
	case ae.Kind == KindValidation && ae.Message == "cart is empty":
		return metrics.CheckoutEmptyCart
	}
	return metrics.CheckoutError
}

type OrderListOutput struct {
	Items      []model.Order `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

// 新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, perPage int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, Unauthorized("login required")
	}
	page, perPage, err := pageParams(page, perPage, 10)
	if err != nil {
		return OrderListOutput{}, err
	}

	items, total, err := u.orders.ListByUserID(ctx, userID, page, perPage)
	if err != nil {
		return OrderListOutput{}, Internal(err)
	}
	return newOrderList(items, total, page, perPage), nil
}

// 他人の注文はNotFound
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID, orderID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, Unauthorized("login required")
	}
	if orderID <= 0 {
		return model.Order{}, Validation("invalid order id")
	}

	o, err := u.orders.FindByIDForUser(ctx, orderID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NotFound("order not found")
	}
	if err != nil {
		return model.Order{}, Internal(err)
	}
	return o, nil
}

func pageParams(page, perPage, def int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = def
	}
	if page < 1 {
		return 0, 0, Validation("invalid page")
	}
	if perPage < 1 || perPage > MaxPerPage {
		return 0, 0, Validation("invalid per_page")
	}
	return page, perPage, nil
}

func newOrderList(items []model.Order, total int64, page, perPage int) OrderListOutput {
	if items == nil {
		items = []model.Order{}
	}
	return OrderListOutput{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}
}
