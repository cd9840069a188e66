package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
)

var (
	ErrBusClosed = errors.New("event bus is closed")
	ErrBusFull   = errors.New("event bus is full")
)

// Bus queues batch rejections for the notice consumer. Publish never blocks;
// a full queue drops the event and counts it.
type Bus struct {
	mu      sync.RWMutex
	closed  bool
	ch      chan entity.BatchRejection
	dropped atomic.Uint64
}

func NewBus(buffer int) *Bus {
	return &Bus{
		ch: make(chan entity.BatchRejection, max(buffer, 1)),
	}
}

func (b *Bus) Publish(ctx context.Context, event entity.BatchRejection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.ch <- event:
		return nil
	default:
		b.dropped.Add(1)
		return ErrBusFull
	}
}

func (b *Bus) Subscribe() <-chan entity.BatchRejection {
	return b.ch
}

// Dropped counts events refused because the queue was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}
