package middleware

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	CartSessionName  = "cart_session"
	cartSessionIDKey = "id"
)

// 匿名カート用の署名付きcookieストア
func NewCartSessionStore(cfg config.AuthConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.CookieSecure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Path = "/"
	store.Options.MaxAge = int(cfg.SessionMaxAge.Seconds())
	if cfg.CookieDomain != "" {
		store.Options.Domain = cfg.CookieDomain
	}
	return store
}

// cookieのセッションIDをcontextに入れる。無ければUUIDを発行してcookieを返す。
// 改ざん・期限切れのcookieは作り直す
func CartSession(store sessions.Store, logg *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// 復号に失敗しても新しいセッションが返る
			sess, err := store.Get(req, CartSessionName)
			if err != nil && logg != nil {
				logg.Debug(req.Context(), "cart_session.invalid_cookie")
			}

			id, _ := sess.Values[cartSessionIDKey].(string)
			if _, perr := uuid.Parse(id); perr != nil {
				id = uuid.NewString()
				sess.Values[cartSessionIDKey] = id
				if err := sess.Save(req, c.Response()); err != nil {
					if logg != nil {
						logg.Error(req.Context(), "cart_session.save_failed", err)
					}
					return c.JSON(http.StatusInternalServerError, errorJSON("INTERNAL", "internal error"))
				}
			}

			c.Set(CtxCartSessionKey, id)
			return next(c)
		}
	}
}
