// Package testdb opens migrated in-memory databases for tests
package testdb

import (
	"regexp"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// New returns a private in-memory SQLite database with every model migrated.
// It is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + unsafeName.ReplaceAllString(t.Name(), "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// one connection keeps the shared memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db, model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
