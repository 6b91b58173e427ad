// Package bootstrap wires process-wide dependencies for the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"capsort/internal/cache"
	"capsort/internal/config"
	"capsort/internal/database"
	"capsort/internal/middleware"
	"capsort/internal/models"
	"capsort/internal/seed"
	"capsort/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo loads the demo catalog after the schema is in place.
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Nil when Redis is unreachable; callers degrade to direct queries.
	r := cache.InitRedis(cfg.RedisURL)

	if err := ensureDevAdmin(context.Background(), cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedDemo {
		s, err := seed.NewSeeder(db, seed.Options{})
		if err != nil {
			return nil, nil, err
		}
		if _, err := s.Run(context.Background()); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevAdmin makes sure DEV_ADMIN_EMAIL exists with the admin role when
// running in development with DEV_BOOTSTRAP_ADMIN enabled.
func ensureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !cfg.IsDevelopment() || !cfg.DevBootstrapAdmin {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@capsort.com"
	}
	if cfg.DevAdminPassword == "" {
		return errors.New("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	hashedPassword, err := service.HashPassword(cfg.DevAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{
				FullName: "Development Administrator",
				Email:    email,
				Password: hashedPassword,
				Role:     models.RoleAdmin,
			}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		case admin.Role != models.RoleAdmin:
			return tx.Model(&models.User{}).Where("id = ?", admin.ID).Update("role", models.RoleAdmin).Error
		}
		return nil
	}); err != nil {
		return err
	}

	middleware.Logger.Info("development admin ensured", "email", email)
	return nil
}
