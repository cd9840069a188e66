package pkglog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ServiceName is attached to every record.
const ServiceName = "hijackaudit"

var level = new(slog.LevelVar)

// SetLevel adjusts the minimum level of the default logger. Unknown names
// leave the level unchanged and report false.
func SetLevel(name string) bool {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return false
	}
	level.Set(l)
	return true
}

// InitLogging configures the default slog logger for the application.
//
// The logger writes JSON to stdout and normalizes a few common fields to make
// logs easier to query (for example, "ts" and "severity").
func InitLogging() {
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "ts"
			case slog.LevelKey:
				a.Key = "severity"
			case slog.SourceKey:
				if src, ok := a.Value.Any().(*slog.Source); ok {
					if strings.Contains(src.File, "/internal/") {
						relPath := filepath.Join("internal", strings.SplitAfter(src.File, "/internal/")[1])
						return slog.Attr{
							Key:   "file",
							Value: slog.StringValue(fmt.Sprintf("%s:%d", relPath, src.Line)),
						}
					}
					return slog.Attr{}
				}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(&contextHandler{Handler: jsonHandler}))
}

type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID, ok := LookupCorrelationID(ctx); ok {
		r.AddAttrs(slog.String("_cID", cID))
	}
	r.AddAttrs(slog.String("service", ServiceName))

	return h.Handler.Handle(ctx, r)
}
