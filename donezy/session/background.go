package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ProcessManager owns the session's background goroutines (recompute
// ticker, refresh loop) with proper lifecycle control so everything is
// torn down when the session ends.
type ProcessManager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processes map[string]*processInfo
	mu        sync.RWMutex
}

type processInfo struct {
	name        string
	cancel      context.CancelFunc
	description string
}

func NewProcessManager() *ProcessManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &ProcessManager{
		ctx:       ctx,
		cancel:    cancel,
		processes: make(map[string]*processInfo),
	}
}

// StartProcess registers and starts a background process.
func (pm *ProcessManager) StartProcess(name, description string, fn func(ctx context.Context)) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if _, exists := pm.processes[name]; exists {
		slog.Warn("Process already exists, stopping existing one", slog.String("name", name))
		pm.stopProcessLocked(name)
	}

	processCtx, processCancel := context.WithCancel(pm.ctx)
	pm.processes[name] = &processInfo{
		name:        name,
		cancel:      processCancel,
		description: description,
	}

	pm.wg.Add(1)
	go func() {
		defer pm.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panic",
					slog.String("process", name),
					slog.Any("panic", r))
			}
		}()

		slog.Debug("Starting background process",
			slog.String("process", name),
			slog.String("description", description))

		fn(processCtx)

		slog.Debug("Background process ended",
			slog.String("process", name))
	}()
}

// StartTicker runs fn on a fixed cadence until the process is stopped.
func (pm *ProcessManager) StartTicker(name, description string, interval time.Duration, fn func(ctx context.Context)) {
	pm.StartProcess(name, description, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	})
}

// StopProcess stops a specific background process.
func (pm *ProcessManager) StopProcess(name string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.stopProcessLocked(name)
}

func (pm *ProcessManager) stopProcessLocked(name string) {
	if process, exists := pm.processes[name]; exists {
		process.cancel()
		delete(pm.processes, name)
	}
}

// Shutdown gracefully stops all background processes.
func (pm *ProcessManager) Shutdown(timeout time.Duration) error {
	pm.cancel()

	done := make(chan struct{})
	go func() {
		pm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Debug("All background processes stopped")
		return nil
	case <-time.After(timeout):
		slog.Warn("Timeout waiting for background processes to stop",
			slog.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}

// ProcessCount returns the number of active processes.
func (pm *ProcessManager) ProcessCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.processes)
}
