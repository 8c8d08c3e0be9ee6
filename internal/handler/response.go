package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func errorJSON(kind usecase.ErrorKind, msg string) ErrorResponse {
	return ErrorResponse{Error: string(kind), Message: msg}
}

// AppErrorはそのままレスポンスにする。
// Internalはechoに返してHTTPErrorHandlerとアクセスログに任せる
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok && ae.Kind != usecase.KindInternal {
		return c.JSON(ae.Status(), ErrorResponse{Error: string(ae.Kind), Message: ae.Message, Details: ae.Details})
	}
	return err
}

// NewHTTPErrorHandler はecho全体のエラーハンドラ。
// bind失敗(*echo.HTTPError)や404/405もここでJSONにする
func NewHTTPErrorHandler(logg *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := errorJSON(usecase.KindInternal, "internal error")

		var fe validator.FieldErrors
		var he *echo.HTTPError
		switch {
		case errors.As(err, &fe):
			status = http.StatusBadRequest
			body = ErrorResponse{Error: string(usecase.KindValidation), Message: "validation failed", Details: fe}
		case errors.As(err, &he):
			status = he.Code
			body = ErrorResponse{Error: httpErrorKind(he.Code), Message: http.StatusText(he.Code)}
			if msg, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
				body.Message = msg
			}
		default:
			if ae, ok := usecase.AsAppError(err); ok {
				status = ae.Status()
				body = ErrorResponse{Error: string(ae.Kind), Message: ae.Message, Details: ae.Details}
			}
		}

		if status >= http.StatusInternalServerError && logg != nil {
			logg.Error(c.Request().Context(), "request.failed", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func httpErrorKind(code int) string {
	switch code {
	case http.StatusBadRequest:
		return string(usecase.KindValidation)
	case http.StatusUnauthorized:
		return string(usecase.KindUnauthorized)
	case http.StatusForbidden:
		return string(usecase.KindForbidden)
	case http.StatusNotFound:
		return string(usecase.KindNotFound)
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return string(usecase.KindRateLimited)
	}
	return string(usecase.KindInternal)
}

// bind + validate。失敗はHTTPErrorHandlerで400になる
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(dst)
}

func paramID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 数値でなければfalse。空なら0
func queryInt(c echo.Context, name string) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func invalidParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, errorJSON(usecase.KindValidation, "invalid "+name))
}

// ログイン中ならユーザー、それ以外は匿名セッションのカート
func identity(c echo.Context) usecase.Identity {
	if id, ok := middleware.UserID(c); ok {
		return usecase.Identity{UserID: id}
	}
	return usecase.Identity{SessionID: middleware.CartSessionID(c)}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON(usecase.KindUnauthorized, "login required"))
}
