package event

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
)

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// NoticeConsumer turns batch rejections into resubmission notices. A batch is
// noticed once; a notice that still fails after its retries releases the
// batch so a later republish can deliver it.
type NoticeConsumer struct {
	bus         *Bus
	notifier    Notifier
	workers     int
	maxRetries  int
	baseBackoff time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	noticed map[string]struct{}

	delivered atomic.Int64
	failed    atomic.Int64
}

func NewNoticeConsumer(bus *Bus, notifier Notifier, cfg ConsumerConfig) *NoticeConsumer {
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &NoticeConsumer{
		bus:         bus,
		notifier:    notifier,
		workers:     max(cfg.Workers, 1),
		maxRetries:  max(cfg.MaxRetries, 0),
		baseBackoff: baseBackoff,
		ctx:         ctx,
		cancel:      cancel,
		noticed:     make(map[string]struct{}),
	}
}

func (c *NoticeConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for event := range c.bus.Subscribe() {
				c.deliver(event)
			}
		}()
	}
}

// Stop closes the bus and lets queued notices drain. When ctx ends first,
// pending retries are abandoned.
func (c *NoticeConsumer) Stop(ctx context.Context) error {
	c.bus.Close()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.cancel()
		return nil
	case <-ctx.Done():
		c.cancel()
		<-done
		return ctx.Err()
	}
}

// Stats reports notices delivered and notices given up on.
func (c *NoticeConsumer) Stats() (delivered, failed int64) {
	return c.delivered.Load(), c.failed.Load()
}

func (c *NoticeConsumer) deliver(event entity.BatchRejection) {
	if event.BatchID == "" || len(event.Files) == 0 {
		slog.Warn("skip malformed batch rejection", "event_id", event.EventID, "batch_id", event.BatchID)
		return
	}
	if !c.claim(event.BatchID) {
		slog.Info("skip already noticed batch", "event_id", event.EventID, "batch_id", event.BatchID)
		return
	}

	notice := NewNotice(event)
	backoff := c.baseBackoff
	for attempt := 0; ; attempt++ {
		err := c.notifier.Notify(c.ctx, notice)
		if err == nil {
			c.delivered.Add(1)
			return
		}

		if attempt == c.maxRetries {
			c.giveUp(event, err)
			return
		}
		slog.Warn("resubmission notice failed, retrying", "batch_id", event.BatchID, "attempt", attempt+1, "error", err)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-c.ctx.Done():
			c.giveUp(event, c.ctx.Err())
			return
		}
	}
}

func (c *NoticeConsumer) claim(batchID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.noticed[batchID]; ok {
		return false
	}
	c.noticed[batchID] = struct{}{}
	return true
}

func (c *NoticeConsumer) giveUp(event entity.BatchRejection, err error) {
	c.mu.Lock()
	delete(c.noticed, event.BatchID)
	c.mu.Unlock()

	c.failed.Add(1)
	slog.Error("failed to deliver resubmission notice", "event_id", event.EventID, "batch_id", event.BatchID, "files", len(event.Files), "error", err)
}
