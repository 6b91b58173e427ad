// Command migrate applies, inspects and rolls back the capsort schema.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"capsort/internal/config"
	"capsort/internal/database"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up              apply pending SQL migrations")
	fmt.Println("  migrate auto            sync tables from the GORM models")
	fmt.Println("  migrate status          show schema mode and pending migrations")
	fmt.Println("  migrate down [version]  roll back one migration (latest by default)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.Options{SkipSchema: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	switch os.Args[1] {
	case "up":
		err = database.RunMigrations(ctx, db)
		if err == nil {
			fmt.Println("Migrations applied")
		}
	case "auto":
		cfg.DBSchemaMode = config.SchemaModeAuto
		err = database.ApplySchema(ctx, db, cfg)
		if err == nil {
			fmt.Println("Models synced")
		}
	case "status":
		err = status(ctx, db, cfg)
	case "down":
		err = down(ctx, db, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func status(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	st, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status: %w", err)
	}

	fmt.Printf("env:      %s\n", st.Environment)
	fmt.Printf("mode:     %s (sql=%t auto=%t)\n", st.Mode, st.WillRunSQL, st.WillRunAutoMigrate)
	fmt.Printf("applied:  %d\n", len(st.AppliedVersions))
	if len(st.PendingMigrations) == 0 {
		fmt.Println("pending:  none")
		return nil
	}
	fmt.Printf("pending:  %d\n", len(st.PendingMigrations))
	for _, m := range st.PendingMigrations {
		fmt.Printf("  %s\n", m.String())
	}
	return nil
}

func down(ctx context.Context, db *gorm.DB, args []string) error {
	if len(args) == 0 {
		m, err := database.RollbackLatest(ctx, db)
		if err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		fmt.Printf("Rolled back %s\n", m.String())
		return nil
	}

	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback %d: %w", version, err)
	}
	fmt.Printf("Rolled back migration %d\n", version)
	return nil
}
