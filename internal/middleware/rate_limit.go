package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/logger"

	"github.com/labstack/echo/v4"
)

// RateLimitStore is satisfied by the redis client.
type RateLimitStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// RateLimitPolicy is a fixed-window limit per client IP and, optionally,
// per login identifier taken from the JSON body.
type RateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	loginLimit int
}

func NewRateLimitPolicy(name string, window time.Duration, ipLimit, loginLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		loginLimit: loginLimit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.loginLimit > 0)
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

func (p RateLimitPolicy) key(scope, value string) string {
	return fmt.Sprintf("rl:%s:%s:%s", scope, p.normalizedName(), value)
}

// storeがnil(Redis未設定)なら何もしない。
// Redisの障害時はリクエストを通す
// login抽出のために読む本文の上限
const maxLoginBodyBytes = 16 << 10

func RateLimit(policy RateLimitPolicy, store RateLimitStore, logg *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !policy.enabled() || store == nil {
			return next
		}

		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			ip := c.RealIP()
			if policy.ipLimit > 0 && ip != "" {
				if blocked := check(ctx, store, logg, policy, "ip", ip, policy.ipLimit); blocked != nil {
					return blocked(c)
				}
			}

			if policy.loginLimit > 0 && req.Body != nil {
				body, err := io.ReadAll(io.LimitReader(req.Body, maxLoginBodyBytes+1))
				if err != nil {
					return c.JSON(http.StatusBadRequest, errorJSON("VALIDATION_ERROR", "invalid request body"))
				}
				if len(body) > maxLoginBodyBytes {
					return c.JSON(http.StatusRequestEntityTooLarge, errorJSON("VALIDATION_ERROR", "request body too large"))
				}
				req.Body = io.NopCloser(bytes.NewReader(body))

				if login := extractLogin(body); login != "" {
					if blocked := check(ctx, store, logg, policy, "login", hashValue(login), policy.loginLimit); blocked != nil {
						return blocked(c)
					}
				}
			}

			return next(c)
		}
	}
}

func check(ctx context.Context, store RateLimitStore, logg *logger.Logger, policy RateLimitPolicy, scope, value string, limit int) echo.HandlerFunc {
	count, err := store.IncrWithTTL(ctx, policy.key(scope, value), policy.window)
	if err != nil {
		if logg != nil {
			logg.Error(ctx, "rate_limit.store_failed", err)
		}
		return nil
	}
	if count <= int64(limit) {
		return nil
	}

	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		if scope == "ip" {
			fields["ip"] = value
		} else {
			fields["login_hash"] = value
		}
		logg.Warn(logg.WithFields(ctx, fields), "rate_limit.blocked")
	}

	return func(c echo.Context) error {
		c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.window.Seconds())))
		return c.JSON(http.StatusTooManyRequests, errorJSON("RATE_LIMITED", "rate limit exceeded"))
	}
}

// ログインはlogin、会員登録はemailで数える
func extractLogin(payload []byte) string {
	var body struct {
		Login string `json:"login"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	v := body.Login
	if v == "" {
		v = body.Email
	}
	return strings.ToLower(strings.TrimSpace(v))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
