package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
	CtxCartSessionKey  = "cart_session"  // string
	CtxRequestIDKey    = "request_id"    // string
	CtxAuthRejectedKey = "auth_rejected" // string 匿名扱いにした理由
)

const (
	rejectedToken    = "token"
	rejectedStale    = "stale"
	rejectedDisabled = "disabled"
)

// ログイン中ならユーザーIDを返す
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(CtxUserIDKey).(int64)
	return id, ok && id > 0
}

func Role(c echo.Context) string {
	role, _ := c.Get(CtxUserRoleKey).(string)
	return role
}

// 匿名カートのセッションID
func CartSessionID(c echo.Context) string {
	id, _ := c.Get(CtxCartSessionKey).(string)
	return id
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorJSON(code, msg string) errorResponse {
	return errorResponse{Error: code, Message: msg}
}

func accountDisabled(c echo.Context) error {
	return c.JSON(http.StatusForbidden, errorJSON("FORBIDDEN", "account is disabled"))
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "unauthorized"))
}
