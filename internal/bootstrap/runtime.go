// Package bootstrap wires up runtime dependencies shared by the cmd binaries.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"skymarket/internal/cache"
	"skymarket/internal/config"
	"skymarket/internal/database"
	"skymarket/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. The Redis client may be nil
// when the server is unreachable; callers run with degraded caching then.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return db, r, nil
}

// ensureDevAdmin creates a known admin account for local development when
// DEV_BOOTSTRAP_ADMIN is enabled. Production environments never reach the
// creation path.
func ensureDevAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@skymarket.local"
	}
	password := cfg.DevAdminPassword
	if password == "" {
		return fmt.Errorf("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{
				Email:     email,
				Password:  string(hashedPassword),
				Role:      models.RoleAdmin,
				FirstName: "Site",
				LastName:  "Admin",
				Phone:     "+70000000000",
				IsActive:  true,
			}
			if createErr := tx.Create(&admin).Error; createErr != nil {
				return fmt.Errorf("create development admin: %w", createErr)
			}
			log.Printf("bootstrapped development admin %s", email)
			return nil
		case findErr != nil:
			return findErr
		}

		// Existing account: make sure it can actually log in as admin.
		updates := map[string]any{
			"role":      models.RoleAdmin,
			"is_active": true,
			"password":  string(hashedPassword),
		}
		if updateErr := tx.Model(&admin).Updates(updates).Error; updateErr != nil {
			return fmt.Errorf("refresh development admin: %w", updateErr)
		}
		return nil
	})
}
