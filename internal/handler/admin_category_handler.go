package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理画面のカテゴリとダッシュボード
type AdminCategoryHandler struct {
	categories *usecase.CategoryUsecase
	dashboard  *usecase.DashboardUsecase
}

func NewAdminCategoryHandler(categories *usecase.CategoryUsecase, dashboard *usecase.DashboardUsecase) *AdminCategoryHandler {
	return &AdminCategoryHandler{categories: categories, dashboard: dashboard}
}

// gは/adminのグループ
func (h *AdminCategoryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/dashboard", h.showDashboard)
	g.GET("/categories", h.list)
	g.POST("/categories", h.create)
	g.PUT("/categories/:id", h.update)
	g.DELETE("/categories/:id", h.delete)
}

func (h *AdminCategoryHandler) showDashboard(c echo.Context) error {
	out, err := h.dashboard.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminCategoryHandler) list(c echo.Context) error {
	items, err := h.categories.AdminList(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *AdminCategoryHandler) create(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.CategoryInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cat, err := h.categories.AdminCreate(c.Request().Context(), adminID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *AdminCategoryHandler) update(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	categoryID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	var req usecase.CategoryInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cat, err := h.categories.AdminUpdate(c.Request().Context(), adminID, categoryID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *AdminCategoryHandler) delete(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	categoryID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	if err := h.categories.AdminDelete(c.Request().Context(), adminID, categoryID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
