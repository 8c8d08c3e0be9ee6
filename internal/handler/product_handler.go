package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/:id", h.detail)
	g.GET("/categories", h.categories)
}

func (h *ProductHandler) list(c echo.Context) error {
	in, err := listProductsInput(c)
	if err != nil {
		return err
	}

	out, err := h.uc.ListProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) categories(c echo.Context) error {
	cats, err := h.uc.Categories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"categories": cats})
}

// page/per_pageが数値でなければ400
func listProductsInput(c echo.Context) (usecase.ListProductsInput, error) {
	page, ok := queryInt(c, "page")
	if !ok {
		return usecase.ListProductsInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	perPage, ok := queryInt(c, "per_page")
	if !ok {
		return usecase.ListProductsInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid per_page")
	}
	return usecase.ListProductsInput{
		Page:     page,
		PerPage:  perPage,
		Q:        c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	}, nil
}
