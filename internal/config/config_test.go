package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", testSessionSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.App.IsDev())
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 336*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 5, cfg.RateLimit.LoginUserLimit)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=storefront sslmode=disable", cfg.DB.DSN())
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", testSessionSecret)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.DB.DSN())
}

func TestLoad_SQLite(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", testSessionSecret)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/shop.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shop.db", cfg.DB.DSN())
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	t.Setenv("SESSION_SECRET", testSessionSecret)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ShortSessionSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", testSessionSecret)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
}
