package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *usecase.AdminUserUsecase
}

func NewAdminUserHandler(uc *usecase.AdminUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (h *AdminUserHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users", h.list)
	g.PUT("/users/:id/active", h.setActive)
	g.POST("/users/:id/force-logout", h.forceLogout)
	g.GET("/audit-logs", h.auditLogs)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page")
	if !ok {
		return invalidParam(c, "page")
	}
	perPage, ok := queryInt(c, "per_page")
	if !ok {
		return invalidParam(c, "per_page")
	}

	out, err := h.uc.List(c.Request().Context(), page, perPage)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 停止するとそのユーザーのトークンは全て失効する
func (h *AdminUserHandler) setActive(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "user_id")
	}

	var req setActiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.uc.SetActive(c.Request().Context(), adminID, userID, *req.IsActive); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "updated"})
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "user_id")
	}

	if err := h.uc.ForceLogout(c.Request().Context(), adminID, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "logged out"})
}

// ?resource_type=order&resource_id=10&limit=50&offset=0
func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return invalidParam(c, "limit")
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return invalidParam(c, "offset")
	}
	resourceID, ok := queryInt(c, "resource_id")
	if !ok {
		return invalidParam(c, "resource_id")
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), usecase.AuditLogQuery{
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   int64(resourceID),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": logs})
}
