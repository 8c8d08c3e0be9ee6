package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/validator"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindOutOfStock   ErrorKind = "OUT_OF_STOCK"
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindConflict     ErrorKind = "CONFLICT"
	KindRateLimited  ErrorKind = "RATE_LIMITED"
	KindInternal     ErrorKind = "INTERNAL"
)

// 在庫不足の明細
type StockShortage struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// AppError is returned by every usecase; handlers map Kind to a status code.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindOutOfStock, KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

func IsKind(err error, kind ErrorKind) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Kind == kind
}

func NotFound(message string) error {
	return NewAppError(KindNotFound, message)
}

func Unauthorized(message string) error {
	return NewAppError(KindUnauthorized, message)
}

func Forbidden(message string) error {
	return NewAppError(KindForbidden, message)
}

func Conflict(message string) error {
	return NewAppError(KindConflict, message)
}

func Validation(message string) error {
	return NewAppError(KindValidation, message)
}

// validator.FieldErrorsはdetailsに載せる
func Invalid(err error) error {
	var fe validator.FieldErrors
	if errors.As(err, &fe) {
		return &AppError{Kind: KindValidation, Message: "validation failed", Details: fe}
	}
	return &AppError{Kind: KindValidation, Message: err.Error()}
}

func OutOfStock(shortages ...StockShortage) error {
	msg := "insufficient stock"
	if len(shortages) == 1 {
		msg = fmt.Sprintf("insufficient stock for %s", shortages[0].Name)
	}
	return &AppError{Kind: KindOutOfStock, Message: msg, Details: shortages}
}

// 原因はログ用に保持し、利用者には出さない
func Internal(err error) error {
	return &AppError{Kind: KindInternal, Message: "internal error", Err: err}
}
