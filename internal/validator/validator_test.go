package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3,max=80,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,notweak"`
	Confirm  string `json:"confirm_password" validate:"eqfield=Password"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

func TestStruct_OK(t *testing.T) {
	err := Struct(signup{
		Username: "hanako_y",
		Email:    "hanako@example.com",
		Password: "s3cret-enough",
		Confirm:  "s3cret-enough",
		Phone:    "+81 (90) 1234-5678",
	})
	assert.NoError(t, err)
}

func TestStruct_FieldErrorsUseJSONNames(t *testing.T) {
	err := Struct(signup{
		Username: "ab",
		Email:    "not-an-email",
		Password: "password123",
		Confirm:  "other",
		Phone:    "123",
	})
	require.Error(t, err)

	fe, ok := err.(FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "must be at least 3 characters", fe["username"])
	assert.Equal(t, "must be a valid email", fe["email"])
	assert.Equal(t, "is too common", fe["password"])
	assert.Equal(t, "must match Password", fe["confirm_password"])
	assert.Equal(t, "must contain 7 to 15 digits", fe["phone"])
}

func TestStruct_Required(t *testing.T) {
	err := Struct(signup{})
	fe, ok := err.(FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "is required", fe["username"])
	assert.Equal(t, "is required", fe["email"])
	assert.NotContains(t, fe, "phone")
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	err := FieldErrors{"b": "is invalid", "a": "is required"}
	assert.Equal(t, "validation failed: a is required, b is invalid", err.Error())
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("090-1234-5678"))
	assert.True(t, IsPhone("+1 (555) 010-9999"))
	assert.False(t, IsPhone("12345"))
	assert.False(t, IsPhone("phone"))
	assert.False(t, IsPhone(""))
}
