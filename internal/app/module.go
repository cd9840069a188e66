package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/hijackaudit/internal/audit"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.audit.enabled") {
		closer, err := audit.New(audit.Dependency{
			Config:  a.config,
			Router:  a.router,
			RunID:   a.snowflake,
			EventID: a.uuid,
		})
		if err != nil {
			slog.Error("failed to init module audit", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Audit"] = closer
		}
	}
}
