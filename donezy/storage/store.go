// Package storage is the persistence layer for the progression engine.
// All engine state is kept as JSON records under logical paths, so the
// authoritative Postgres store and the local SQLite fallback are
// interchangeable behind the same RecordStore contract.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// RecordStore reads and writes JSON records by logical path. Absence is
// reported through the bool, not an error.
type RecordStore interface {
	Read(ctx context.Context, path string) (json.RawMessage, bool, error)
	Write(ctx context.Context, path string, value json.RawMessage) error
	Delete(ctx context.Context, path string) error
	Ping(ctx context.Context) error
	Close() error
}

// StoreError represents a storage-level failure that could not be
// recovered by fallback.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage error during %s for %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Record paths, one logical document per concern.
func ProgressionPath(userID string) string {
	return "users/" + userID + "/progression"
}

func QuestsPath(userID, period string) string {
	return "users/" + userID + "/quests/" + period
}

func BadgesPath(userID string) string {
	return "users/" + userID + "/badges"
}

func GrantsPath(userID string) string {
	return "users/" + userID + "/grants"
}

// ReadJSON reads path and unmarshals it into v. The bool reports
// presence.
func ReadJSON(ctx context.Context, s RecordStore, path string, v any) (bool, error) {
	raw, ok, err := s.Read(ctx, path)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, &StoreError{Op: "decode", Path: path, Err: err}
	}
	return true, nil
}

// WriteJSON marshals v and writes it to path.
func WriteJSON(ctx context.Context, s RecordStore, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &StoreError{Op: "encode", Path: path, Err: err}
	}
	return s.Write(ctx, path, raw)
}
