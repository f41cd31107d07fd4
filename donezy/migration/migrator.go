// Package migration imports user records from the legacy MongoDB
// deployment into the record store. Legacy documents carry flat XP and
// counter fields; the importer rebuilds progression records and seeds
// the grant ledger so previously paid level-ups are never paid again.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/progression"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

const maxConcurrentImports = 8

// legacyUser mirrors the fields of the old deployment's user documents.
type legacyUser struct {
	UserID          string    `bson:"user_id"`
	XP              int64     `bson:"xp"`
	Essence         int64     `bson:"essence"`
	StreakDays      int       `bson:"streak_days"`
	TotalActiveDays int       `bson:"total_active_days"`
	LastActiveDate  string    `bson:"last_active_date"`
	TasksCompleted  int       `bson:"tasks_completed"`
	ListsCreated    int       `bson:"lists_created"`
	NotesCreated    int       `bson:"notes_created"`
	EventsCreated   int       `bson:"events_created"`
	QuestsCompleted int       `bson:"quests_completed"`
	Joined          time.Time `bson:"joined"`
}

type Stats struct {
	Users    int
	Failed   int
	Duration time.Duration
}

type Migrator struct {
	store  storage.RecordStore
	ledger *progression.Ledger

	mongoURI string
	database string
	coll     string

	sem *semaphore.Weighted
}

func NewMigrator(store storage.RecordStore, ledger *progression.Ledger, mongoURI, database string) *Migrator {
	return &Migrator{
		store:    store,
		ledger:   ledger,
		mongoURI: mongoURI,
		database: database,
		coll:     "users",
		sem:      semaphore.NewWeighted(maxConcurrentImports),
	}
}

// MigrateAll streams every legacy user document and imports it. Users
// are imported concurrently with bounded parallelism.
func (m *Migrator) MigrateAll(ctx context.Context) (*Stats, error) {
	start := time.Now()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to legacy mongo: %w", err)
	}
	defer client.Disconnect(ctx)

	cursor, err := client.Database(m.database).Collection(m.coll).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []legacyUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode legacy users: %w", err)
	}

	stats := &Stats{}
	g, ctx := errgroup.WithContext(ctx)
	results := make([]error, len(users))

	for i, user := range users {
		if err := m.sem.Acquire(ctx, 1); err != nil {
			return stats, err
		}
		g.Go(func() error {
			defer m.sem.Release(1)
			results[i] = m.importUser(ctx, user)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for _, err := range results {
		if err != nil {
			stats.Failed++
			slog.Error("Failed to import legacy user", slog.Any("error", err))
			continue
		}
		stats.Users++
	}
	stats.Duration = time.Since(start)

	slog.Info("Legacy import finished",
		slog.Int("users", stats.Users),
		slog.Int("failed", stats.Failed),
		slog.Duration("took", stats.Duration))
	return stats, nil
}

// importUser rebuilds one progression record. Existing records are
// never overwritten, so the import can be re-run safely.
func (m *Migrator) importUser(ctx context.Context, user legacyUser) error {
	if user.UserID == "" {
		return fmt.Errorf("legacy user document without user_id")
	}

	path := storage.ProgressionPath(user.UserID)
	if _, ok, err := m.store.Read(ctx, path); err != nil {
		return err
	} else if ok {
		slog.Debug("Skipping already imported user",
			slog.String("user_id", user.UserID))
		return nil
	}

	now := time.Now()
	prog := models.NewUserProgression(user.UserID, now)
	prog.TotalXP = user.XP
	prog.Level = m.ledger.LevelForXP(user.XP)
	prog.Essence = user.Essence
	prog.StreakDays = user.StreakDays
	prog.TotalActiveDays = user.TotalActiveDays
	prog.LastActiveDate = user.LastActiveDate
	prog.TasksCompleted = user.TasksCompleted
	prog.ListsCreated = user.ListsCreated
	prog.NotesCreated = user.NotesCreated
	prog.EventsCreated = user.EventsCreated
	prog.QuestsCompleted = user.QuestsCompleted
	if !user.Joined.IsZero() {
		prog.CreatedAt = user.Joined
	}

	if err := storage.WriteJSON(ctx, m.store, path, prog); err != nil {
		return err
	}

	// Seed level-up grant keys for every level the user already holds;
	// the issuer must treat those bonuses as paid out by the legacy app.
	grants := make(models.GrantSet)
	for level := 2; level <= prog.Level; level++ {
		grants.Add(models.GrantKeyLevelUp(level), now)
	}
	if len(grants) > 0 {
		if err := storage.SaveGrants(ctx, m.store, user.UserID, grants); err != nil {
			return err
		}
	}
	return nil
}
