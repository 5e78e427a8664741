package main

// Run database migrations:
//   go run ./cmd/migrate            apply pending migrations
//   go run ./cmd/migrate -down      revert the latest migration

import (
	"context"
	"flag"
	"log"
	"os"

	"trackjob-backend/internal/shared/config"
	"trackjob-backend/internal/shared/storage/db"
	"trackjob-backend/internal/shared/telemetry"
)

func main() {
	down := flag.Bool("down", false, "revert the most recent migration")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	run, action := db.RunMigrations, "up"
	if *down {
		run, action = db.RollbackMigration, "down"
	}
	if err := run(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations (%s): %v", action, err)
		os.Exit(1)
	}

	version, err := db.MigrationVersion(ctx, sqlDB)
	if err != nil {
		log.Printf("read schema version: %v", err)
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"action": action, "version": version})
}
