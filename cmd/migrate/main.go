// Command migrate imports user records from the legacy MongoDB
// deployment into the authoritative Postgres store. It is safe to
// re-run: users that already have a progression record are skipped.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/logger"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/migration"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/progression"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := donezy.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.Migration.MongoURI == "" {
		slog.Error("Missing [migration] mongo_uri in config")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	store, err := storage.NewPostgresStore(ctx, storage.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	ledger := progression.NewLedger(&progression.CurveConfig{
		Base:       cfg.Engine.LevelBase,
		Multiplier: cfg.Engine.LevelMultiplier,
	})

	migrator := migration.NewMigrator(store, ledger, cfg.Migration.MongoURI, cfg.Migration.Database)
	stats, err := migrator.MigrateAll(ctx)
	if err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Migration completed successfully!",
		slog.Int("users", stats.Users),
		slog.Int("failed", stats.Failed),
		slog.Duration("took", stats.Duration))
}
