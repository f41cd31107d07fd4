package migration

import (
	"context"
	"testing"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/progression"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

func newTestMigrator(store storage.RecordStore) *Migrator {
	return NewMigrator(store, progression.NewLedger(nil), "mongodb://unused", "legacy")
}

func TestImportUser(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newTestMigrator(store)

	joined := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	user := legacyUser{
		UserID:          "u1",
		XP:              250,
		Essence:         40,
		StreakDays:      6,
		TotalActiveDays: 80,
		LastActiveDate:  "2025-06-09",
		TasksCompleted:  120,
		NotesCreated:    30,
		Joined:          joined,
	}

	if err := m.importUser(ctx, user); err != nil {
		t.Fatalf("importUser: %v", err)
	}

	prog, err := storage.LoadProgression(ctx, store, "u1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if prog.TotalXP != 250 {
		t.Errorf("TotalXP = %d, want 250", prog.TotalXP)
	}
	// 250 XP sits past the 220 threshold for level 3.
	if prog.Level != 3 {
		t.Errorf("Level = %d, want 3", prog.Level)
	}
	if prog.TasksCompleted != 120 || prog.NotesCreated != 30 {
		t.Errorf("counters = %d tasks / %d notes", prog.TasksCompleted, prog.NotesCreated)
	}
	if !prog.CreatedAt.Equal(joined) {
		t.Errorf("CreatedAt = %v, want %v", prog.CreatedAt, joined)
	}

	// Level-up bonuses for levels the user already holds are marked as
	// paid so the issuer never pays them again.
	grants, err := storage.LoadGrants(ctx, store, "u1")
	if err != nil {
		t.Fatal(err)
	}
	for level := 2; level <= 3; level++ {
		if !grants.Has(models.GrantKeyLevelUp(level)) {
			t.Errorf("missing seeded grant for level %d", level)
		}
	}
	if grants.Has(models.GrantKeyLevelUp(4)) {
		t.Error("grant seeded past the derived level")
	}
}

func TestImportUserSkipsExisting(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newTestMigrator(store)

	existing := models.NewUserProgression("u1", time.Now())
	existing.TotalXP = 999
	if err := storage.SaveProgression(ctx, store, existing); err != nil {
		t.Fatal(err)
	}

	if err := m.importUser(ctx, legacyUser{UserID: "u1", XP: 1}); err != nil {
		t.Fatalf("importUser: %v", err)
	}

	prog, err := storage.LoadProgression(ctx, store, "u1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if prog.TotalXP != 999 {
		t.Errorf("existing record overwritten: TotalXP = %d", prog.TotalXP)
	}
}

func TestImportUserRejectsMissingID(t *testing.T) {
	m := newTestMigrator(storage.NewMemoryStore())
	if err := m.importUser(context.Background(), legacyUser{XP: 10}); err == nil {
		t.Error("expected error for document without user_id")
	}
}
