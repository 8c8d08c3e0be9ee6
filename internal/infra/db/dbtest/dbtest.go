// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"storefront/internal/config"
	"storefront/internal/infra/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated database backed by a file in t.TempDir().
func New(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DBConfig{
		Driver:       "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 8,
		MaxIdleConns: 8,
	}
	gdb, err := db.Connect(cfg, nil, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
