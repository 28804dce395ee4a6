// Package testutil provides an isolated in-memory database for package tests.
package testutil

import (
	"testing"

	"buyinbuyout/internal/database"
	"buyinbuyout/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh, migrated sqlite database private to the calling test
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), database.Options(logger.Discard))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// SeedUser inserts a user with a placeholder password hash
func SeedUser(t testing.TB, db *gorm.DB, username string, role model.Role) model.User {
	t.Helper()
	u := model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

// SeedRequest inserts a purchase request for ownerID in the given status
func SeedRequest(t testing.TB, db *gorm.DB, ownerID uint, name string, status model.RequestStatus) model.PurchaseRequest {
	t.Helper()
	pr := model.PurchaseRequest{Name: name, Status: status, UserID: ownerID}
	if err := db.Create(&pr).Error; err != nil {
		t.Fatalf("failed to seed purchase request: %v", err)
	}
	return pr
}
