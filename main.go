package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/activity"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/events"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/logger"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/progression"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/session"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Donezy progression engine",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	userID := flag.String("user", "", "user id to run a session for")
	flag.Parse()

	if *userID == "" {
		slog.Error("Missing required -user flag")
		os.Exit(-1)
	}

	cfg, err := donezy.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	customHandler.SetLevel(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", slog.Any("error", err))
		os.Exit(-1)
	}
	defer store.Close()

	source := activity.NewStoreSource(store, *userID)
	sink := &events.Sink{
		OnRewardGranted: func(xp, essence int64, reason string) {
			slog.Info("Reward notification",
				slog.String("type", "act"),
				slog.Int64("xp", xp),
				slog.Int64("essence", essence),
				slog.String("reason", reason))
		},
		OnLevelUp: func(oldLevel, newLevel int) {
			slog.Info("Level up notification",
				slog.String("type", "act"),
				slog.Int("old_level", oldLevel),
				slog.Int("new_level", newLevel))
		},
	}

	sess := session.New(store, source, sink, session.Options{
		UserID: *userID,
		Curve: &progression.CurveConfig{
			Base:       cfg.Engine.LevelBase,
			Multiplier: cfg.Engine.LevelMultiplier,
		},
		LevelUpMultiplier: cfg.Engine.LevelUpMultiplier,
		MinQuests:         cfg.Engine.MinQuestsPerPeriod,
		MaxQuests:         cfg.Engine.MaxQuestsPerPeriod,
		ReadyAttempts:     cfg.Engine.ReadyAttempts,
		ReadyInterval:     time.Duration(cfg.Engine.ReadyIntervalMsec) * time.Millisecond,
		RecomputeInterval: time.Duration(cfg.Engine.RecomputeIntervalSecs) * time.Second,
		RefreshInterval:   time.Duration(cfg.Engine.RefreshIntervalSecs) * time.Second,
	})

	if err := sess.Start(ctx); err != nil {
		slog.Error("Failed to start session",
			slog.String("user_id", *userID),
			slog.Any("error", err))
		os.Exit(-1)
	}
	defer sess.Close()

	slog.Info("Engine is running. Press CTRL-C to exit.",
		slog.String("user_id", *userID))
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down engine...")
}

// openStore builds the dual-backend adapter: authoritative Postgres
// when reachable, local SQLite fallback otherwise. A missing remote at
// startup is not fatal as long as the local store opens.
func openStore(ctx context.Context, cfg *donezy.Config) (storage.RecordStore, error) {
	var remote storage.RecordStore
	if cfg.DB.Host != "" {
		pg, err := storage.NewPostgresStore(ctx, storage.PostgresConfig{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Database,
			PoolSize: cfg.DB.PoolSize,
		})
		if err != nil {
			slog.Warn("Remote store unavailable at startup, continuing locally",
				slog.String("type", "store"),
				slog.Any("error", err))
		} else {
			remote = pg
		}
	}

	localPath := cfg.LocalDB.Path
	if localPath == "" {
		localPath = "donezy.db"
	}
	var local storage.RecordStore
	if sqlite, err := storage.OpenSQLiteStore(localPath); err != nil {
		if remote == nil {
			return nil, err
		}
		slog.Warn("Local store unavailable, running remote-only",
			slog.String("type", "store"),
			slog.Any("error", err))
	} else {
		local = sqlite
	}

	return storage.NewFailover(remote, local), nil
}
