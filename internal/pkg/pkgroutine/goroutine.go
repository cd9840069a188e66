package pkgroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
)

// ErrPanic wraps a value recovered from a panicking task.
var ErrPanic = errors.New("goroutine panicked")

// Manager runs functions in goroutines with a bounded concurrency.
//
// Errors returned by tasks, and panics recovered from them, are collected and
// reported by Wait.
type Manager struct {
	mu   sync.Mutex
	errs []error
	wg   sync.WaitGroup
	sema chan struct{}
}

// NewManager creates a Manager running at most maxGoroutine tasks at once,
// or runtime.NumCPU() tasks when maxGoroutine is not positive.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU()
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go blocks until a slot is free and then runs f in a goroutine. It reports
// false when ctx ends first and f was never started.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) bool {
	select {
	case g.sema <- struct{}{}:
	case <-pCtx.Done():
		slog.WarnContext(pCtx, "goroutine canceled before start", "because", pCtx.Err())
		return false
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				slog.ErrorContext(pCtx, "panic occurred in goroutine", "panic", rvr, "stack", string(debug.Stack()))
				g.record(fmt.Errorf("%w: %v", ErrPanic, rvr))
			}
		}()

		if err := pCtx.Err(); err != nil {
			slog.WarnContext(pCtx, "goroutine canceled", "because", err)
			return
		}
		if err := f(pCtx); err != nil {
			g.record(err)
		}
	}()

	return true
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Wait blocks until all scheduled goroutines finish and returns any collected errors.
func (g *Manager) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
