package repository

import (
	"testing"

	"skymarket/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Ad{}, &models.Comment{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:     email,
		Password:  "irrelevant-hash",
		Role:      role,
		FirstName: "Test",
		LastName:  "User",
		Phone:     "+79991234567",
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
