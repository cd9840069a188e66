package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/hijackaudit/internal/audit/event"
	"github.com/shandysiswandi/hijackaudit/internal/audit/inbound"
	"github.com/shandysiswandi/hijackaudit/internal/audit/pipeline"
	"github.com/shandysiswandi/hijackaudit/internal/audit/store"
	"github.com/shandysiswandi/hijackaudit/internal/audit/usecase"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkguid"
)

type Dependency struct {
	Config  pkgconfig.Config
	Router  *pkgrouter.Router
	RunID   pkguid.StringID
	EventID pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	cfg := dep.Config

	schema := pipeline.Schema{
		Decision:  cfg.GetArray("audit.columns.decision"),
		UniqueID:  cfg.GetArray("audit.columns.unique_id"),
		ProofLink: cfg.GetArray("audit.columns.proof_link"),
	}.WithDefaults()

	storage := store.NewInMemoryStore()
	bus := event.NewBus(int(cfg.GetInt("audit.events.buffer")))

	var notifier event.Notifier = event.LogNotifier{}
	var noticeFile *event.FileNotifier
	if path := cfg.GetString("audit.events.notice_file"); path != "" {
		fn, err := event.NewFileNotifier(path)
		if err != nil {
			return nil, err
		}
		notifier, noticeFile = fn, fn
	}

	consumer := event.NewNoticeConsumer(bus, notifier, event.ConsumerConfig{
		Workers:     int(cfg.GetInt("audit.events.workers")),
		MaxRetries:  int(cfg.GetInt("audit.events.max_retries")),
		BaseBackoff: time.Duration(cfg.GetInt("audit.events.base_backoff_ms")) * time.Millisecond,
	})
	consumer.Start()

	if dep.EventID == nil {
		dep.EventID = pkguid.NewUUID()
	}
	if dep.RunID == nil {
		dep.RunID = dep.EventID
	}

	uc := usecase.New(usecase.Dependency{
		Store:          storage,
		Events:         bus,
		Engine:         pipeline.NewEngine(pipeline.Config{Schema: schema, Workers: int(cfg.GetInt("audit.max_workers"))}),
		Exporter:       pipeline.NewExporter(schema),
		RunID:          dep.RunID,
		EventID:        dep.EventID,
		DefaultPercent: samplePercent(cfg),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.Config{
		MaxUploadBytes: cfg.GetInt("audit.max_upload_bytes"),
	})

	return func(ctx context.Context) error {
		err := consumer.Stop(ctx)
		delivered, failed := consumer.Stats()
		slog.InfoContext(ctx, "resubmission notices drained", "delivered", delivered, "failed", failed, "dropped", bus.Dropped())
		if noticeFile != nil {
			err = errors.Join(err, noticeFile.Close())
		}
		return err
	}, nil
}

// samplePercent tells an explicit 0 apart from a missing key, which viper
// also reports as 0.
func samplePercent(cfg pkgconfig.Config) *float64 {
	if cfg.GetString("audit.sample_percent") == "" {
		return nil
	}
	p := cfg.GetFloat("audit.sample_percent")
	return &p
}
