package middleware

import (
	"strings"

	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// bearerAuth用のJWT検証ミドルウェア。トークンが無ければ401
func AuthJWT(secret string) echo.MiddlewareFunc {
	return authJWT(secret, false)
}

// トークンがあれば検証してcontextに入れる。
// 無い、または期限切れ・不正なトークンは匿名のまま通す
func OptionalAuthJWT(secret string) echo.MiddlewareFunc {
	return authJWT(secret, true)
}

func authJWT(secret string, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get(echo.HeaderAuthorization)
			if authz == "" {
				if optional {
					return next(c)
				}
				return unauthorized(c)
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return reject(c, next, optional)
			}
			raw := strings.TrimSpace(parts[1])
			if raw == "" {
				return reject(c, next, optional)
			}

			claims, err := auth.ParseAccessToken(secret, raw)
			if err != nil {
				return reject(c, next, optional)
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, string(claims.Role))
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			return next(c)
		}
	}
}

func reject(c echo.Context, next echo.HandlerFunc, optional bool) error {
	if !optional {
		return unauthorized(c)
	}
	c.Set(CtxAuthRejectedKey, rejectedToken)
	return next(c)
}

// OptionalAuthJWTとTokenVersionGuardの後ろで使う。
// 未ログインなら401、停止ユーザーなら403
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := UserID(c); !ok {
				if reason, _ := c.Get(CtxAuthRejectedKey).(string); reason == rejectedDisabled {
					return accountDisabled(c)
				}
				return unauthorized(c)
			}
			return next(c)
		}
	}
}
