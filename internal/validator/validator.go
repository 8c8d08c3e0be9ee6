package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// 記号を除いて7〜15桁
var phoneDigits = regexp.MustCompile(`^[0-9]{7,15}$`)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var weakPasswords = map[string]struct{}{
	"password":    {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"letmein123":  {},
	"admin123":    {},
	"iloveyou":    {},
}

// FieldErrors maps a json field name to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// echo.Validatorとしても使う
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notweak", func(fl validator.FieldLevel) bool {
		_, weak := weakPasswords[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
		return !weak
	})
	return &Validator{v: v}
}

var std = New()

// Struct validates i with the shared validator.
func Struct(i any) error {
	return std.Validate(i)
}

func (v *Validator) Validate(i any) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := FieldErrors{}
	for _, fe := range errs {
		if _, dup := out[fe.Field()]; !dup {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "phone":
		return "must contain 7 to 15 digits"
	case "username":
		return "may only contain letters, digits, '.', '_' and '-'"
	case "notweak":
		return "is too common"
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "nefield":
		return fmt.Sprintf("must differ from %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return "is invalid"
}

// IsPhone accepts common separators and an optional leading '+'.
func IsPhone(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "")
	return phoneDigits.MatchString(r.Replace(s))
}
