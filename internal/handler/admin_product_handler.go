package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理画面の商品・在庫
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// gは/adminのグループ(JWT必須 + ADMIN限定)
func (h *AdminProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.POST("/products", h.create)
	g.PUT("/products/:id", h.update)
	g.DELETE("/products/:id", h.delete)
	g.PUT("/products/:id/inventory", h.updateInventory)
}

// 非公開・削除済みも含めて一覧
func (h *AdminProductHandler) list(c echo.Context) error {
	in, err := listProductsInput(c)
	if err != nil {
		return err
	}

	out, err := h.uc.AdminListProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	var req usecase.ProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, productID, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "updated"})
}

// 論理削除
func (h *AdminProductHandler) delete(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, productID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	var req usecase.InventoryInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, productID, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "inventory updated"})
}
