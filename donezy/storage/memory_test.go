package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestMemoryStoreReadIsolatesRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := json.RawMessage(`{"level":3}`)
	if err := store.Write(ctx, "users/u1/progression", original); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, ok, err := store.Read(ctx, "users/u1/progression")
	if err != nil || !ok {
		t.Fatalf("Read = %v, %v, %v", raw, ok, err)
	}

	// Scribbling over the returned slice must not reach the store.
	for i := range raw {
		raw[i] = 'x'
	}

	again, ok, err := store.Read(ctx, "users/u1/progression")
	if err != nil || !ok {
		t.Fatalf("second Read = %v, %v, %v", again, ok, err)
	}
	if !bytes.Equal(again, original) {
		t.Errorf("stored record changed to %s, want %s", again, original)
	}

	if _, ok, err := store.Read(ctx, "users/u1/missing"); ok || err != nil {
		t.Errorf("Read(missing) = %v, %v, want false, nil", ok, err)
	}
}
