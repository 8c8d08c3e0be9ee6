package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"storefront/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Status(t *testing.T) {
	tests := map[ErrorKind]int{
		KindNotFound:     http.StatusNotFound,
		KindOutOfStock:   http.StatusConflict,
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindConflict:     http.StatusConflict,
		KindRateLimited:  http.StatusTooManyRequests,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range tests {
		assert.Equal(t, status, NewAppError(kind, "x").Status(), kind)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("product not found"))
	ae, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, ae.Kind)
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	ae, _ := AsAppError(err)
	assert.Equal(t, "internal error", ae.Message)
}

func TestInvalid_CarriesFieldErrors(t *testing.T) {
	err := Invalid(validator.FieldErrors{"email": "is required"})
	ae, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, ae.Kind)
	assert.Equal(t, validator.FieldErrors{"email": "is required"}, ae.Details)
}

func TestOutOfStock_Message(t *testing.T) {
	err := OutOfStock(StockShortage{ProductID: 1, Name: "Mug", Requested: 3, Available: 1})
	ae, _ := AsAppError(err)
	assert.Equal(t, "insufficient stock for Mug", ae.Message)
	assert.Len(t, ae.Details, 1)

	err = OutOfStock(StockShortage{ProductID: 1}, StockShortage{ProductID: 2})
	ae, _ = AsAppError(err)
	assert.Equal(t, "insufficient stock", ae.Message)
}
