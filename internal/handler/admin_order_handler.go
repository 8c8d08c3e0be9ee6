package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type orderStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AdminOrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.GET("/orders/:id", h.detail)
	g.PUT("/orders/:id/status", h.updateStatus)
}

// ?status=pending&search=ORD-2024&page=2
func (h *AdminOrderHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page")
	if !ok {
		return invalidParam(c, "page")
	}
	perPage, ok := queryInt(c, "per_page")
	if !ok {
		return invalidParam(c, "per_page")
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AdminListOrdersInput{
		Page:    page,
		PerPage: perPage,
		Status:  c.QueryParam("status"),
		Search:  c.QueryParam("search"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	o, err := h.uc.Get(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}

	var req orderStatusUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	// 操作した管理者IDは監査ログに残す
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, req.Status); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "updated"})
}
