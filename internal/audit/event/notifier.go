package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// LogNotifier writes the notice as a structured warning.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, notice Notice) error {
	attrs := []any{
		"batch_id", notice.BatchID,
		"rejected_at", notice.RejectedAt,
		"by_class", notice.ByClass,
	}
	for _, f := range notice.Files {
		attrs = append(attrs, slog.Group("file", "name", f.File, "class", f.Class, "detail", f.Detail))
	}

	slog.WarnContext(ctx, notice.Summary, attrs...)
	return nil
}

// FileNotifier appends one JSON line per notice to a resubmission log.
type FileNotifier struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileNotifier(path string) (*FileNotifier, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileNotifier{f: f}, nil
}

func (n *FileNotifier) Notify(ctx context.Context, notice Notice) error {
	line, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.f.Write(line); err != nil {
		return err
	}
	return n.f.Sync()
}

func (n *FileNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.f.Close()
}
