package activity

import (
	"context"
	"testing"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

func TestCurrentTotal(t *testing.T) {
	ctx := context.Background()
	src := NewStoreSource(storage.NewMemoryStore(), "u1")

	total, err := src.CurrentTotal(ctx, models.ActivityListsCreated)
	if err != nil {
		t.Fatalf("CurrentTotal: %v", err)
	}
	if total != 0 {
		t.Errorf("empty total = %d", total)
	}

	if err := src.SetTotal(ctx, models.ActivityListsCreated, 7); err != nil {
		t.Fatalf("SetTotal: %v", err)
	}
	total, err = src.CurrentTotal(ctx, models.ActivityListsCreated)
	if err != nil {
		t.Fatal(err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
}

func TestCompletedTodayResetsOnDateChange(t *testing.T) {
	ctx := context.Background()
	src := NewStoreSource(storage.NewMemoryStore(), "u1")

	day1 := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	src.SetNow(func() time.Time { return day1 })

	if err := src.BumpToday(ctx, models.ActivityTasksCompleted, 2); err != nil {
		t.Fatalf("BumpToday: %v", err)
	}
	if err := src.BumpToday(ctx, models.ActivityTasksCompleted, 1); err != nil {
		t.Fatal(err)
	}

	count, err := src.CompletedToday(ctx, models.ActivityTasksCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	// Next day the record is stale and reads as zero.
	day2 := day1.AddDate(0, 0, 1)
	src.SetNow(func() time.Time { return day2 })
	count, err = src.CompletedToday(ctx, models.ActivityTasksCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("stale count = %d, want 0", count)
	}

	// A bump on the new day restarts the record instead of appending.
	if err := src.BumpToday(ctx, models.ActivityTasksCompleted, 1); err != nil {
		t.Fatal(err)
	}
	count, _ = src.CompletedToday(ctx, models.ActivityTasksCompleted)
	if count != 1 {
		t.Errorf("restarted count = %d, want 1", count)
	}
}
