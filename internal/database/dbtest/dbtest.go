// Package dbtest opens throwaway SQLite databases with the service schema for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"krankenhaus-matrix/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a private in-memory database migrated with the full schema.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig("test"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
