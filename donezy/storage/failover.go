package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	defaultCacheSize      = 512
	defaultRemoteCooldown = 30 * time.Second
)

// Failover serves reads and writes remote-first and falls back to the
// local store transparently on any remote failure. Callers never learn
// which backend served a request. An LRU cache over recent records keeps
// read-your-writes semantics inside a session even when consecutive
// operations land on different backends. No cross-backend replication
// happens: a write absorbed locally while the remote is down stays
// local.
type Failover struct {
	remote RecordStore
	local  RecordStore
	cache  *lru.Cache

	mu              sync.Mutex
	remoteDownUntil time.Time
	cooldown        time.Duration
}

// NewFailover wraps the two backends. Either may be nil; at least one
// must be set.
func NewFailover(remote, local RecordStore) *Failover {
	cache, _ := lru.New(defaultCacheSize)
	return &Failover{
		remote:   remote,
		local:    local,
		cache:    cache,
		cooldown: defaultRemoteCooldown,
	}
}

func (f *Failover) remoteHealthy() bool {
	if f.remote == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Now().After(f.remoteDownUntil)
}

func (f *Failover) markRemoteDown(op, path string, err error) {
	f.mu.Lock()
	f.remoteDownUntil = time.Now().Add(f.cooldown)
	f.mu.Unlock()
	slog.Warn("Remote store unavailable, serving locally",
		slog.String("type", "store"),
		slog.String("op", op),
		slog.String("path", path),
		slog.Any("error", err))
}

func (f *Failover) Read(ctx context.Context, path string) (json.RawMessage, bool, error) {
	if cached, ok := f.cache.Get(path); ok {
		return cached.(json.RawMessage), true, nil
	}

	if f.remoteHealthy() {
		raw, ok, err := f.remote.Read(ctx, path)
		if err == nil {
			if ok {
				f.cache.Add(path, raw)
			}
			return raw, ok, nil
		}
		f.markRemoteDown("read", path, err)
	}

	if f.local == nil {
		return nil, false, &StoreError{Op: "read", Path: path, Err: errNoBackend}
	}
	raw, ok, err := f.local.Read(ctx, path)
	if err != nil {
		return nil, false, err
	}
	if ok {
		f.cache.Add(path, raw)
	}
	return raw, ok, nil
}

func (f *Failover) Write(ctx context.Context, path string, value json.RawMessage) error {
	if f.remoteHealthy() {
		if err := f.remote.Write(ctx, path, value); err == nil {
			f.cache.Add(path, value)
			return nil
		} else {
			f.markRemoteDown("write", path, err)
		}
	}

	if f.local == nil {
		return &StoreError{Op: "write", Path: path, Err: errNoBackend}
	}
	if err := f.local.Write(ctx, path, value); err != nil {
		return err
	}
	f.cache.Add(path, value)
	return nil
}

func (f *Failover) Delete(ctx context.Context, path string) error {
	f.cache.Remove(path)

	var remoteErr error
	if f.remoteHealthy() {
		if remoteErr = f.remote.Delete(ctx, path); remoteErr != nil {
			f.markRemoteDown("delete", path, remoteErr)
		}
	}
	if f.local == nil {
		return remoteErr
	}
	return f.local.Delete(ctx, path)
}

// Ping succeeds when any backend is reachable.
func (f *Failover) Ping(ctx context.Context) error {
	var err error
	if f.remote != nil {
		if err = f.remote.Ping(ctx); err == nil {
			return nil
		}
	}
	if f.local != nil {
		return f.local.Ping(ctx)
	}
	if err == nil {
		err = errNoBackend
	}
	return err
}

func (f *Failover) Close() error {
	var first error
	if f.remote != nil {
		if err := f.remote.Close(); err != nil {
			first = err
		}
	}
	if f.local != nil {
		if err := f.local.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
