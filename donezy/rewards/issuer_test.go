package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/events"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/progression"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestIssuer(t *testing.T, store storage.RecordStore, sink *events.Sink) *Issuer {
	t.Helper()
	ledger := progression.NewLedger(nil)
	issuer := NewIssuer(store, ledger, sink, "u1", 5)
	issuer.SetNow(func() time.Time { return testNow })
	return issuer
}

func TestGrantIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	var granted int
	sink := &events.Sink{
		OnRewardGranted: func(xp, essence int64, reason string) { granted++ },
	}
	issuer := newTestIssuer(t, store, sink)

	ok, err := issuer.Grant(ctx, models.GrantKeyQuest("q1"), 30, 5)
	if err != nil {
		t.Fatalf("first Grant: %v", err)
	}
	if !ok {
		t.Fatal("first Grant suppressed")
	}

	ok, err = issuer.Grant(ctx, models.GrantKeyQuest("q1"), 30, 5)
	if err != nil {
		t.Fatalf("second Grant: %v", err)
	}
	if ok {
		t.Fatal("duplicate Grant not suppressed")
	}
	if granted != 1 {
		t.Errorf("reward emitted %d times, want 1", granted)
	}

	prog, err := storage.LoadProgression(ctx, store, "u1", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if prog.TotalXP != 30 || prog.Essence != 5 {
		t.Errorf("balance = xp %d essence %d, want 30/5", prog.TotalXP, prog.Essence)
	}
}

func TestGrantLevelUpBonus(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	prog := models.NewUserProgression("u1", testNow)
	prog.TotalXP = 95
	if err := storage.SaveProgression(ctx, store, prog); err != nil {
		t.Fatal(err)
	}

	var levelUps [][2]int
	sink := &events.Sink{
		OnLevelUp: func(oldLevel, newLevel int) {
			levelUps = append(levelUps, [2]int{oldLevel, newLevel})
		},
	}
	issuer := newTestIssuer(t, store, sink)

	// 95 + 10 XP crosses the level 2 threshold at 100.
	if _, err := issuer.Grant(ctx, models.GrantKeyQuest("q1"), 10, 0); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	if len(levelUps) != 1 || levelUps[0] != [2]int{1, 2} {
		t.Errorf("level-up events = %v, want [[1 2]]", levelUps)
	}

	loaded, err := storage.LoadProgression(ctx, store, "u1", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Level != 2 {
		t.Errorf("Level = %d, want 2", loaded.Level)
	}
	// Level 2 bonus is level * multiplier essence.
	if loaded.Essence != 10 {
		t.Errorf("Essence = %d, want 10", loaded.Essence)
	}

	grants, err := storage.LoadGrants(ctx, store, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !grants.Has(models.GrantKeyLevelUp(2)) {
		t.Error("level-up grant key missing")
	}

	// Re-granting under a fresh subject that adds no XP must not pay
	// the level bonus again.
	if _, err := issuer.Grant(ctx, models.GrantKeyQuest("q2"), 1, 0); err != nil {
		t.Fatal(err)
	}
	loaded, _ = storage.LoadProgression(ctx, store, "u1", testNow)
	if loaded.Essence != 10 {
		t.Errorf("Essence after second grant = %d, want 10", loaded.Essence)
	}
}

func TestGrantMultiLevelJump(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	issuer := newTestIssuer(t, store, nil)

	// 400 XP from zero crosses levels 2, 3 and 4 (thresholds 100, 220, 364).
	if _, err := issuer.Grant(ctx, models.GrantKeyQuest("big"), 400, 0); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	prog, err := storage.LoadProgression(ctx, store, "u1", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Level != 4 {
		t.Errorf("Level = %d, want 4", prog.Level)
	}
	// Bonuses: 2*5 + 3*5 + 4*5.
	if prog.Essence != 45 {
		t.Errorf("Essence = %d, want 45", prog.Essence)
	}

	grants, _ := storage.LoadGrants(ctx, store, "u1")
	for level := 2; level <= 4; level++ {
		if !grants.Has(models.GrantKeyLevelUp(level)) {
			t.Errorf("missing level-up grant for level %d", level)
		}
	}
}

// markerFailStore fails writes to one path only, to separate the
// balance write from the grant marker write.
type markerFailStore struct {
	*storage.MemoryStore
	failPath string
}

func (s *markerFailStore) Write(ctx context.Context, path string, value json.RawMessage) error {
	if path == s.failPath {
		return errors.New("marker write refused")
	}
	return s.MemoryStore.Write(ctx, path, value)
}

func TestGrantMarkerFailureFailsClosed(t *testing.T) {
	ctx := context.Background()
	store := &markerFailStore{
		MemoryStore: storage.NewMemoryStore(),
		failPath:    storage.GrantsPath("u1"),
	}
	issuer := newTestIssuer(t, store, nil)

	ok, err := issuer.Grant(ctx, models.GrantKeyQuest("q1"), 30, 0)
	if err == nil {
		t.Fatal("expected error when the grant marker cannot be written")
	}
	if !ok {
		t.Error("balance was applied, Grant should report it")
	}

	// The balance write landed before the marker failed.
	prog, loadErr := storage.LoadProgression(ctx, store, "u1", testNow)
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if prog.TotalXP != 30 {
		t.Errorf("TotalXP = %d, want 30", prog.TotalXP)
	}
}
