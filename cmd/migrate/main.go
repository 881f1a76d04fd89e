package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"scentmatch-backend/internal/shared/config"
	"scentmatch-backend/internal/shared/storage/db"
	"scentmatch-backend/internal/shared/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	telemetry.Configure(os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate: connect failed", map[string]any{"error": err.Error()})
		return 1
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate: failed", map[string]any{"error": err.Error()})
		return 1
	}
	telemetry.Info("migrate: done", nil)
	return 0
}
