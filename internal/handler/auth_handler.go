package handler

import (
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	sessionUC  *auth.SessionUsecase      // refresh/logout
	profileUC  *auth.ProfileUsecase
	cookie     config.AuthConfig
	logg       *logger.Logger
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	sessionUC *auth.SessionUsecase,
	profileUC *auth.ProfileUsecase,
	cookie config.AuthConfig,
	logg *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		sessionUC:  sessionUC,
		profileUC:  profileUC,
		cookie:     cookie,
		logg:       logg,
	}
}

// AuthRateLimits is the set of per-route rate limiters for /auth.
type AuthRateLimits struct {
	Login    echo.MiddlewareFunc
	Register echo.MiddlewareFunc
}

// gは/authのグループ
func (h *AuthHandler) RegisterRoutes(g *echo.Group, limits AuthRateLimits, requireUser echo.MiddlewareFunc) {
	g.POST("/register", h.register, limits.Register)
	g.POST("/login", h.login, limits.Login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)

	g.GET("/profile", h.profile, requireUser)
	g.PUT("/profile", h.updateProfile, requireUser)
	g.POST("/change-password", h.changePassword, requireUser)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req auth.RegisterUserInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.registerUC.Execute(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// ログイン成功時にrefresh cookieをセットし、匿名カートをユーザーに寄せる
func (h *AuthHandler) login(c echo.Context) error {
	var req auth.LoginInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.UserAgent = c.Request().UserAgent()
	req.SessionID = middleware.CartSessionID(c)

	ctx := c.Request().Context()
	out, side, err := h.loginUC.Execute(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	if side.CartMergeErr != nil && h.logg != nil {
		h.logg.Warn(h.logg.WithFields(ctx, map[string]any{
			"user_id": out.User.ID,
			"error":   side.CartMergeErr.Error(),
		}), "cart.merge_failed")
	}

	h.setRefreshCookie(c, side.PlainRefreshToken, side.RefreshExpiresAt)
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	plain := ""
	if ck, err := c.Cookie(refreshCookieName); err == nil {
		plain = ck.Value
	}

	out, side, err := h.sessionUC.Refresh(c.Request().Context(), plain, c.Request().UserAgent())
	if err != nil {
		h.clearRefreshCookie(c)
		return writeError(c, err)
	}

	h.setRefreshCookie(c, side.PlainRefreshToken, side.RefreshExpiresAt)
	return c.JSON(http.StatusOK, out)
}

// cookieが無くても成功
func (h *AuthHandler) logout(c echo.Context) error {
	plain := ""
	if ck, err := c.Cookie(refreshCookieName); err == nil {
		plain = ck.Value
	}

	if err := h.sessionUC.Logout(c.Request().Context(), plain); err != nil {
		return writeError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) profile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.profileUC.Get(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req auth.ProfileInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.profileUC.Update(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// パスワード変更後は既存のトークンが全て無効になるので再ログインが必要
func (h *AuthHandler) changePassword(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req auth.ChangePasswordInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.profileUC.ChangePassword(c.Request().Context(), userID, req); err != nil {
		return writeError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "password changed"})
}

// refresh tokenをCookieにセット
func (h *AuthHandler) setRefreshCookie(c echo.Context, plain string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plain,
		Path:     "/auth",
		Domain:   h.cookie.CookieDomain,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		Domain:   h.cookie.CookieDomain,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
