package seed

import (
	"testing"

	"skymarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Ad{}, &models.Comment{}))
	return db
}

func TestFactoryCreateUser(t *testing.T) {
	db := newTestDB(t)
	f := NewFactory(db, Options{})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(user.Password), []byte(DefaultPassword)))
}

func TestFactoryOverrides(t *testing.T) {
	db := newTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	admin, err := f.CreateAdmin(func(u *models.User) {
		u.Email = "boss@example.com"
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "boss@example.com", admin.Email)
	assert.Equal(t, DefaultPassword, admin.Password)
}

func TestSeederRun(t *testing.T) {
	db := newTestDB(t)
	s := NewSeeder(db, Options{SkipBcrypt: true})

	result, err := s.Run(3, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Users, "3 users plus the known admin")
	assert.Equal(t, 5, result.Ads)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@skymarket.local").First(&admin).Error)
	assert.True(t, admin.IsAdmin())

	var adCount int64
	require.NoError(t, db.Model(&models.Ad{}).Count(&adCount).Error)
	assert.EqualValues(t, 5, adCount)

	var orphaned int64
	require.NoError(t, db.Model(&models.Comment{}).
		Where("ad_id NOT IN (?)", db.Model(&models.Ad{}).Select("id")).
		Count(&orphaned).Error)
	assert.Zero(t, orphaned, "every comment hangs off a seeded ad")
}

func TestSeederClearAll(t *testing.T) {
	db := newTestDB(t)
	s := NewSeeder(db, Options{SkipBcrypt: true})

	_, err := s.Run(2, 3)
	require.NoError(t, err)
	require.NoError(t, s.ClearAll())

	for _, model := range []interface{}{&models.Comment{}, &models.Ad{}, &models.User{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}
