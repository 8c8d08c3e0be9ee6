package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// カートの持ち主。ログイン中はUserID、それ以外はセッションID
type Identity struct {
	UserID    int64
	SessionID string
}

func (id Identity) IsUser() bool {
	return id.UserID > 0
}

func (id Identity) valid() bool {
	return id.UserID > 0 || id.SessionID != ""
}

type CartLine struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	Name          string          `json:"name"`
	ImageURL      string          `json:"image_url"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int64           `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	StockQuantity int64           `json:"stock_quantity"`
	// 非公開・削除済み・在庫切れならfalse
	Available bool `json:"available"`
}

type CartSummary struct {
	CartID     int64           `json:"cart_id,omitempty"`
	TotalLines int             `json:"total_lines"`
	TotalItems int64           `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []CartLine      `json:"items"`
}

type CartUsecase struct {
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	tx        repo.TransactionManager
	metrics   *metrics.ShopMetrics
}

// DI
func NewCartUsecase(carts repo.CartRepository, cartItems repo.CartItemRepository, tx repo.TransactionManager, m *metrics.ShopMetrics) *CartUsecase {
	return &CartUsecase{carts: carts, cartItems: cartItems, tx: tx, metrics: m}
}

// カートが無ければ空のサマリを返す。読み取りでは作成しない
func (u *CartUsecase) Summary(ctx context.Context, id Identity) (CartSummary, error) {
	if !id.valid() {
		return emptySummary(), nil
	}

	cart, found, err := findCart(ctx, u.carts, id)
	if err != nil {
		return CartSummary{}, err
	}
	if !found {
		return emptySummary(), nil
	}

	items, err := u.cartItems.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartSummary{}, Internal(err)
	}
	return buildSummary(cart.ID, items), nil
}

// 既存明細があれば加算し、在庫数で頭打ちにする
func (u *CartUsecase) AddItem(ctx context.Context, id Identity, productID int64, qty int64) error {
	if !id.valid() {
		return Unauthorized("no cart session")
	}
	if productID <= 0 {
		return Validation("invalid product id")
	}
	if qty <= 0 {
		return Validation("quantity must be greater than 0")
	}

	err := u.addItem(ctx, id, productID, qty)
	// カート・明細の同時作成に負けたときは一度だけやり直す
	if errors.Is(err, repo.ErrConflict) {
		err = u.addItem(ctx, id, productID, qty)
	}
	if err != nil {
		return wrapInternal(err)
	}
	u.metrics.IncCartOp("add")
	return nil
}

func (u *CartUsecase) addItem(ctx context.Context, id Identity, productID int64, qty int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("product not found")
		}
		if err != nil {
			return err
		}
		if !p.IsActive {
			return NotFound("product not found")
		}
		if qty > p.StockQuantity {
			return OutOfStock(StockShortage{ProductID: p.ID, Name: p.Name, Requested: qty, Available: p.StockQuantity})
		}

		cart, err := getOrCreateCart(ctx, r.Carts(), id)
		if err != nil {
			return err
		}

		existing, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, productID)
		if errors.Is(err, repo.ErrNotFound) {
			_, err = r.CartItems().Create(ctx, model.CartItem{CartID: cart.ID, ProductID: productID, Quantity: qty})
			return err
		}
		if err != nil {
			return err
		}

		return r.CartItems().UpdateQuantity(ctx, existing.ID, min(existing.Quantity+qty, p.StockQuantity))
	})
}

// qty<=0なら明細を削除。それ以外は在庫数で頭打ち
func (u *CartUsecase) UpdateItem(ctx context.Context, id Identity, cartItemID int64, qty int64) error {
	if cartItemID <= 0 {
		return Validation("invalid cart item id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := findLine(ctx, r, id, cartItemID)
		if err != nil {
			return err
		}

		if qty <= 0 {
			return r.CartItems().DeleteByID(ctx, item.ID)
		}

		p := item.Product
		if !p.IsActive || p.DeletedAt.Valid || p.StockQuantity <= 0 {
			return OutOfStock(StockShortage{ProductID: p.ID, Name: p.Name, Requested: qty, Available: 0})
		}
		return r.CartItems().UpdateQuantity(ctx, item.ID, min(qty, p.StockQuantity))
	})
	if err != nil {
		return wrapInternal(err)
	}
	u.metrics.IncCartOp("update")
	return nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, id Identity, cartItemID int64) error {
	if cartItemID <= 0 {
		return Validation("invalid cart item id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := findLine(ctx, r, id, cartItemID)
		if err != nil {
			return err
		}
		return r.CartItems().DeleteByID(ctx, item.ID)
	})
	if err != nil {
		return wrapInternal(err)
	}
	u.metrics.IncCartOp("remove")
	return nil
}

// カートが無い場合は何もしない
func (u *CartUsecase) Clear(ctx context.Context, id Identity) error {
	if !id.valid() {
		return nil
	}

	cart, found, err := findCart(ctx, u.carts, id)
	if err != nil || !found {
		return err
	}
	if err := u.carts.Clear(ctx, cart.ID); err != nil {
		return Internal(err)
	}
	u.metrics.IncCartOp("clear")
	return nil
}

// ログイン時に匿名カートをユーザーのカートへ統合し、匿名カートは削除する。
// 数量は合算して在庫で頭打ち、販売できない商品の明細は捨てる
func (u *CartUsecase) MergeSessionCart(ctx context.Context, sessionID string, userID int64) error {
	if sessionID == "" || userID <= 0 {
		return nil
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		anon, err := r.Carts().FindBySessionID(ctx, sessionID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		lines, err := r.CartItems().ListByCartID(ctx, anon.ID)
		if err != nil {
			return err
		}

		if len(lines) > 0 {
			cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
			if err != nil {
				return err
			}

			for _, line := range lines {
				p := line.Product
				if !p.IsActive || p.DeletedAt.Valid || p.StockQuantity <= 0 {
					continue
				}

				existing, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, line.ProductID)
				if errors.Is(err, repo.ErrNotFound) {
					if _, err := r.CartItems().Create(ctx, model.CartItem{
						CartID:    cart.ID,
						ProductID: line.ProductID,
						Quantity:  min(line.Quantity, p.StockQuantity),
					}); err != nil {
						return err
					}
					continue
				}
				if err != nil {
					return err
				}
				if err := r.CartItems().UpdateQuantity(ctx, existing.ID, min(existing.Quantity+line.Quantity, p.StockQuantity)); err != nil {
					return err
				}
			}
		}

		return r.Carts().Delete(ctx, anon.ID)
	})
	if err != nil {
		return wrapInternal(err)
	}
	u.metrics.IncCartOp("merge")
	return nil
}

// 呼び出し元のカートに属さない明細はNotFound
func findLine(ctx context.Context, r repo.TxRepos, id Identity, cartItemID int64) (model.CartItem, error) {
	cart, found, err := findCart(ctx, r.Carts(), id)
	if err != nil {
		return model.CartItem{}, err
	}
	if !found {
		return model.CartItem{}, NotFound("cart item not found")
	}

	item, err := r.CartItems().FindInCart(ctx, cart.ID, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, NotFound("cart item not found")
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

func findCart(ctx context.Context, carts repo.CartRepository, id Identity) (model.Cart, bool, error) {
	var (
		cart model.Cart
		err  error
	)
	switch {
	case id.IsUser():
		cart, err = carts.FindByUserID(ctx, id.UserID)
	case id.SessionID != "":
		cart, err = carts.FindBySessionID(ctx, id.SessionID)
	default:
		return model.Cart{}, false, nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, false, nil
	}
	if err != nil {
		return model.Cart{}, false, Internal(err)
	}
	return cart, true, nil
}

func getOrCreateCart(ctx context.Context, carts repo.CartRepository, id Identity) (model.Cart, error) {
	if id.IsUser() {
		return carts.GetOrCreateByUserID(ctx, id.UserID)
	}
	return carts.GetOrCreateBySessionID(ctx, id.SessionID)
}

func emptySummary() CartSummary {
	return CartSummary{TotalPrice: decimal.Zero, Items: []CartLine{}}
}

// 合計は現在の商品価格で計算する
func buildSummary(cartID int64, items []model.CartItem) CartSummary {
	s := emptySummary()
	s.CartID = cartID
	for _, it := range items {
		p := it.Product
		sub := p.Price.Mul(decimal.NewFromInt(it.Quantity))
		s.Items = append(s.Items, CartLine{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Name:          p.Name,
			ImageURL:      p.ImageURL,
			Price:         p.Price,
			Quantity:      it.Quantity,
			Subtotal:      sub,
			StockQuantity: p.StockQuantity,
			Available:     p.IsActive && !p.DeletedAt.Valid && p.StockQuantity > 0,
		})
		s.TotalItems += it.Quantity
		s.TotalPrice = s.TotalPrice.Add(sub)
	}
	s.TotalLines = len(s.Items)
	return s
}

// AppError以外はInternalに包む
func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	return Internal(err)
}
