package database

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"capsort/internal/config"
	"capsort/internal/middleware"

	"gorm.io/gorm"
)

// schemaPlan is the set of schema steps a config asks for.
type schemaPlan struct {
	mode          string
	sql           bool
	auto          bool
	protectedAuto bool
}

// SchemaStatus describes what ApplySchema would do for a config.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

var protectedEnvs = []string{"production", "prod", "staging", "stage"}

// planSchema resolves DB_SCHEMA_MODE for the environment. Hybrid runs the SQL
// migrations everywhere and AutoMigrate only outside protected environments.
func planSchema(cfg *config.Config) (schemaPlan, error) {
	p := schemaPlan{mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if p.mode == "" {
		p.mode = config.SchemaModeHybrid
	}
	protected := slices.Contains(protectedEnvs, strings.ToLower(strings.TrimSpace(cfg.Env)))

	switch p.mode {
	case config.SchemaModeSQL:
		p.sql = true
	case config.SchemaModeHybrid:
		p.sql, p.auto = true, !protected
	case config.SchemaModeAuto:
		if protected && !cfg.DBAutoMigrateAllowDestructive {
			return p, fmt.Errorf("DB_SCHEMA_MODE=auto in %q requires DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		p.auto, p.protectedAuto = true, protected
	default:
		return p, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", p.mode)
	}
	return p, nil
}

// AutoMigrate creates or updates tables for PersistentModels.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the users, projects and saved_projects tables up to date.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.sql {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if !plan.auto {
		return nil
	}

	if plan.protectedAuto {
		middleware.Logger.Warn("AutoMigrate enabled in a protected environment", "env", cfg.Env)
	}
	middleware.Logger.Info("running AutoMigrate", "mode", plan.mode, "env", cfg.Env)
	if err := AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports the plan and any unapplied SQL migrations without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.sql,
		WillRunAutoMigrate: plan.auto,
	}
	if !plan.sql {
		return status, nil
	}

	status.AppliedVersions, err = NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.PendingMigrations = pendingMigrations(status.AppliedVersions, GetMigrations())
	return status, nil
}
