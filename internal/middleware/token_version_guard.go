package middleware

import (
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionが一致するか確認。
// 古いトークンや停止ユーザーはログイン情報を外して匿名として通す。
// 401/403を返すのはRequireUserの役目
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserID(c)
			if !ok {
				return next(c)
			}

			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return anonymize(c, next, rejectedStale)
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil || user == nil {
				return anonymize(c, next, rejectedStale)
			}

			//token_versionが一致しなければ強制ログアウト扱い
			if user.TokenVersion != tv {
				return anonymize(c, next, rejectedStale)
			}
			if !user.IsActive {
				return anonymize(c, next, rejectedDisabled)
			}

			return next(c)
		}
	}
}

func anonymize(c echo.Context, next echo.HandlerFunc, reason string) error {
	c.Set(CtxUserIDKey, nil)
	c.Set(CtxUserRoleKey, nil)
	c.Set(CtxTokenVersionKey, nil)
	c.Set(CtxAuthRejectedKey, reason)
	return next(c)
}
