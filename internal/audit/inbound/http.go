package inbound

import (
	"context"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/shandysiswandi/hijackaudit/internal/audit/usecase"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgrouter"
)

type uc interface {
	Collate(ctx context.Context, in usecase.CollateInput) (usecase.CollateResult, error)
	Summary(ctx context.Context, runID string) (usecase.SummaryResult, error)
	Export(ctx context.Context, runID string, kind entity.ExportKind) (usecase.ExportResult, error)
	Reset(ctx context.Context, runID string) error
}

type Config struct {
	// MaxUploadBytes caps the whole multipart body.
	MaxUploadBytes int64
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, cfg Config) {
	if cfg.MaxUploadBytes < 1 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	end := &HTTPEndpoint{uc: uc, maxUploadBytes: cfg.MaxUploadBytes}

	r.POST("/runs", end.Collate)
	r.GET("/runs/:id", end.Summary)
	r.GET("/runs/:id/exports/:kind", end.Export)
	r.DELETE("/runs/:id", end.Reset)
}
