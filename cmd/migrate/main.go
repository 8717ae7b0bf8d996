package main

// Apply, inspect or roll back the match schema:
//   go run ./cmd/migrate [-down] [-version]

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/storage/db"
	"jobmatch-backend/internal/shared/telemetry"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	versionOnly := flag.Bool("version", false, "print the current schema version and exit")
	flag.Parse()

	cfg := config.Load()
	_ = telemetry.Configure(cfg.LogLevel)
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect.failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch {
	case *versionOnly:
	case *down:
		err = db.RollbackLast(ctx, sqlDB)
	default:
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err, "down": *down})
		os.Exit(1)
	}

	version, err := db.MigrationVersion(ctx, sqlDB)
	if err != nil {
		telemetry.Error("migrate.version.failed", map[string]any{"err": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"version": version, "down": *down})
}
