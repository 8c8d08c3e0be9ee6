package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カートとチェックアウトのHTTP
type CartHandler struct {
	carts  *usecase.CartUsecase
	orders *usecase.OrderUsecase
}

// DI
func NewCartHandler(carts *usecase.CartUsecase, orders *usecase.OrderUsecase) *CartHandler {
	return &CartHandler{carts: carts, orders: orders}
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	// 省略時は1
	Quantity *int64 `json:"quantity"`
}

type updateCartItemRequest struct {
	CartItemID int64 `json:"cart_item_id" validate:"required,gt=0"`
	Quantity   int64 `json:"quantity"`
}

type removeCartItemRequest struct {
	CartItemID int64 `json:"cart_item_id" validate:"required,gt=0"`
}

type addToCartResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	CartSummary cartSummaryResponse `json:"cart_summary"`
}

// ヘッダーのバッジ表示用
type cartSummaryResponse struct {
	TotalItems int64  `json:"total_items"`
	TotalLines int    `json:"total_lines"`
	TotalPrice string `json:"total_price"`
}

func newCartSummaryResponse(s usecase.CartSummary) cartSummaryResponse {
	return cartSummaryResponse{
		TotalItems: s.TotalItems,
		TotalLines: s.TotalLines,
		TotalPrice: s.TotalPrice.StringFixed(2),
	}
}

// add-to-cartはレート制限を掛けるのでmiddlewareを受け取る
func (h *CartHandler) RegisterRoutes(g *echo.Group, addLimit echo.MiddlewareFunc, requireUser echo.MiddlewareFunc) {
	g.POST("/api/add-to-cart", h.add, addLimit)
	g.GET("/api/cart-summary", h.summary)

	g.GET("/cart", h.view)
	g.POST("/cart/update", h.update)
	g.POST("/cart/remove", h.remove)
	g.POST("/cart/clear", h.clear)
	g.POST("/cart/checkout", h.checkout, requireUser)
}

func (h *CartHandler) add(c echo.Context) error {
	var req addToCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	qty := int64(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx := c.Request().Context()
	id := identity(c)
	if err := h.carts.AddItem(ctx, id, req.ProductID, qty); err != nil {
		return writeError(c, err)
	}

	s, err := h.carts.Summary(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, addToCartResponse{
		Success:     true,
		Message:     "added to cart",
		CartSummary: newCartSummaryResponse(s),
	})
}

func (h *CartHandler) summary(c echo.Context) error {
	s, err := h.carts.Summary(c.Request().Context(), identity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newCartSummaryResponse(s))
}

func (h *CartHandler) view(c echo.Context) error {
	s, err := h.carts.Summary(c.Request().Context(), identity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// 数量0以下は明細の削除
func (h *CartHandler) update(c echo.Context) error {
	var req updateCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	id := identity(c)
	if err := h.carts.UpdateItem(ctx, id, req.CartItemID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	return h.respondCart(c, id)
}

func (h *CartHandler) remove(c echo.Context) error {
	var req removeCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id := identity(c)
	if err := h.carts.RemoveItem(c.Request().Context(), id, req.CartItemID); err != nil {
		return writeError(c, err)
	}
	return h.respondCart(c, id)
}

func (h *CartHandler) clear(c echo.Context) error {
	id := identity(c)
	if err := h.carts.Clear(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return h.respondCart(c, id)
}

func (h *CartHandler) checkout(c echo.Context) error {
	id := identity(c)
	if !id.IsUser() {
		return unauthorized(c)
	}

	var req usecase.CheckoutInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.PlaceOrder(c.Request().Context(), id.UserID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *CartHandler) respondCart(c echo.Context, id usecase.Identity) error {
	s, err := h.carts.Summary(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
