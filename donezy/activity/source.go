// Package activity adapts live collection counts for the quest
// engine's pull path. The surrounding application mirrors its current
// totals and per-day action counts into the record store; StoreSource
// reads them back.
package activity

import (
	"context"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

type totalsRecord map[string]int

type todayRecord struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

func totalsPath(userID string) string { return "users/" + userID + "/live/totals" }
func todayPath(userID string) string  { return "users/" + userID + "/live/today" }

// StoreSource is a quests.Source backed by the record store.
type StoreSource struct {
	store  storage.RecordStore
	userID string
	now    func() time.Time
}

func NewStoreSource(store storage.RecordStore, userID string) *StoreSource {
	return &StoreSource{store: store, userID: userID, now: time.Now}
}

// SetNow overrides the clock, for tests.
func (s *StoreSource) SetNow(now func() time.Time) { s.now = now }

func (s *StoreSource) CurrentTotal(ctx context.Context, trackingKey string) (int, error) {
	totals := make(totalsRecord)
	if _, err := storage.ReadJSON(ctx, s.store, totalsPath(s.userID), &totals); err != nil {
		return 0, err
	}
	return totals[trackingKey], nil
}

func (s *StoreSource) CompletedToday(ctx context.Context, kind string) (int, error) {
	var today todayRecord
	if _, err := storage.ReadJSON(ctx, s.store, todayPath(s.userID), &today); err != nil {
		return 0, err
	}
	if today.Date != s.now().Format("2006-01-02") {
		return 0, nil
	}
	return today.Counts[kind], nil
}

// SetTotal records the current size of a collection.
func (s *StoreSource) SetTotal(ctx context.Context, trackingKey string, total int) error {
	totals := make(totalsRecord)
	if _, err := storage.ReadJSON(ctx, s.store, totalsPath(s.userID), &totals); err != nil {
		return err
	}
	totals[trackingKey] = total
	return storage.WriteJSON(ctx, s.store, totalsPath(s.userID), totals)
}

// BumpToday counts one day-scoped action; the record resets itself when
// the calendar day changes.
func (s *StoreSource) BumpToday(ctx context.Context, kind string, amount int) error {
	var today todayRecord
	if _, err := storage.ReadJSON(ctx, s.store, todayPath(s.userID), &today); err != nil {
		return err
	}
	date := s.now().Format("2006-01-02")
	if today.Date != date || today.Counts == nil {
		today = todayRecord{Date: date, Counts: make(map[string]int)}
	}
	today.Counts[kind] += amount
	return storage.WriteJSON(ctx, s.store, todayPath(s.userID), today)
}
