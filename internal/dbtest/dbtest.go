// Package dbtest opens migrated databases for tests.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Skotchmaster/aquashop/internal/repo"
	pkgdb "github.com/Skotchmaster/aquashop/pkg/db"
)

// SQLite returns a fresh in-memory database. A single connection keeps every
// goroutine of a test on the same database.
func SQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), pkgdb.GormConfig())
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Postgres connects to TEST_DATABASE_URL and skips the test when it is unset.
func Postgres(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := pkgdb.Open(context.Background(), os.Getenv("TEST_DB_DRIVER"), dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}
