// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"testing"

	"reservation-system/config"
	"reservation-system/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated SQLite database that lives as long as the test.
// It holds a single connection because every new :memory: connection is a new database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}
