package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/shandysiswandi/hijackaudit/internal/audit/pipeline"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgerror"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkguid"
)

const DefaultSamplePercent = 15

type Store interface {
	CreateRun(ctx context.Context, run *entity.Run) error
	GetRun(ctx context.Context, runID string) (*entity.Run, error)
	DeleteRun(ctx context.Context, runID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.BatchRejection) error
}

type Engine interface {
	Process(ctx context.Context, files []entity.UploadedFile, fraction float64, verifiers []string) pipeline.Result
}

type Exporter interface {
	Table(table *entity.Table, sheet string) ([]byte, error)
	Stats(stats []entity.StatsRow, sheet string) ([]byte, error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store          Store
	Events         EventPublisher
	Engine         Engine
	Exporter       Exporter
	Clock          Clock
	RunID          pkguid.StringID
	EventID        pkguid.StringID
	// DefaultPercent applies when a request omits sample_percent. Nil or a
	// value outside [0, 100] means DefaultSamplePercent; 0 is honoured.
	DefaultPercent *float64
}

type Usecase struct {
	store          Store
	events         EventPublisher
	engine         Engine
	exporter       Exporter
	clock          Clock
	runID          pkguid.StringID
	eventID        pkguid.StringID
	defaultPercent float64
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	percent := float64(DefaultSamplePercent)
	if p := dep.DefaultPercent; p != nil && !math.IsNaN(*p) && *p >= 0 && *p <= 100 {
		percent = *p
	}

	return &Usecase{
		store:          dep.Store,
		events:         dep.Events,
		engine:         dep.Engine,
		exporter:       dep.Exporter,
		clock:          clock,
		runID:          dep.RunID,
		eventID:        dep.EventID,
		defaultPercent: percent,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Collate runs the pipeline over one batch. A batch with any rejected file is
// not stored: the caller gets the error list and stays awaiting input.
func (u *Usecase) Collate(ctx context.Context, in CollateInput) (CollateResult, error) {
	if u.store == nil || u.engine == nil || u.runID == nil {
		return CollateResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if len(in.Files) == 0 {
		return CollateResult{}, pkgerror.NewInvalidInput(errors.New("at least one file is required"))
	}

	percent := u.defaultPercent
	if in.SamplePercent != nil {
		percent = *in.SamplePercent
	}
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return CollateResult{}, pkgerror.NewInvalidInput(errors.New("sample_percent must be between 0 and 100"))
	}
	fraction := percent / 100

	res := u.engine.Process(ctx, in.Files, fraction, in.Verifiers)
	if len(res.Errors) > 0 {
		messages := make([]string, 0, len(res.Errors))
		for _, ierr := range res.Errors {
			messages = append(messages, ierr.Error())
		}
		u.publishRejection(ctx, res.Errors)

		return CollateResult{State: entity.RunStateAwaitingInput, Errors: messages}, nil
	}

	if res.Master == nil {
		return CollateResult{}, pkgerror.NewInvalidInput(errors.New("no file could be collated"))
	}

	run := &entity.Run{
		ID:         u.runID.Generate(),
		State:      entity.RunStateProcessed,
		CreatedAt:  u.clock.Now().Unix(),
		Fraction:   fraction,
		Verifiers:  in.Verifiers,
		Stratified: res.Stratified,
		Master:     res.Master,
		Pending:    res.Pending,
		Sample:     res.Sample,
		Stats:      res.Stats,
	}
	if err := u.store.CreateRun(ctx, run); err != nil {
		return CollateResult{}, normalizeErr(err)
	}

	slog.InfoContext(ctx, "run processed", "run_id", run.ID, "files", len(in.Files), "fraction", fraction, "verifiers", len(in.Verifiers))

	return CollateResult{
		RunID:      run.ID,
		State:      run.State,
		Summary:    summarize(run),
		Stratified: run.Stratified,
	}, nil
}

func (u *Usecase) Summary(ctx context.Context, runID string) (SummaryResult, error) {
	run, err := u.getRun(ctx, runID)
	if err != nil {
		return SummaryResult{}, err
	}

	return SummaryResult{
		RunID:      run.ID,
		State:      run.State,
		Summary:    summarize(run),
		Fraction:   run.Fraction,
		Verifiers:  run.Verifiers,
		Stratified: run.Stratified,
		Stats:      run.Stats,
	}, nil
}

func (u *Usecase) Export(ctx context.Context, runID string, kind entity.ExportKind) (ExportResult, error) {
	if kind.FileName() == "" {
		return ExportResult{}, pkgerror.NewInvalidInput(fmt.Errorf("unknown export %q", kind))
	}
	if u.exporter == nil {
		return ExportResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	run, err := u.getRun(ctx, runID)
	if err != nil {
		return ExportResult{}, err
	}

	var content []byte
	switch kind {
	case entity.ExportMaster:
		content, err = u.exporter.Table(run.Master, "Master")
	case entity.ExportPending:
		content, err = u.exporter.Table(run.Pending, "Pending")
	case entity.ExportSample:
		content, err = u.exporter.Table(run.Sample, "Sample")
	case entity.ExportStats:
		content, err = u.exporter.Stats(run.Stats, "Performance")
	}
	if err != nil {
		return ExportResult{}, pkgerror.NewServer(err)
	}

	return ExportResult{FileName: kind.FileName(), Content: content}, nil
}

// Reset discards a processed run, returning the workflow to awaiting input.
func (u *Usecase) Reset(ctx context.Context, runID string) error {
	if runID == "" {
		return pkgerror.NewInvalidInput(errors.New("run_id is required"))
	}

	if err := u.store.DeleteRun(ctx, runID); err != nil {
		return mapStoreErr(err)
	}

	slog.InfoContext(ctx, "run reset", "run_id", runID)
	return nil
}

func (u *Usecase) getRun(ctx context.Context, runID string) (*entity.Run, error) {
	if runID == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("run_id is required"))
	}

	run, err := u.store.GetRun(ctx, runID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return run, nil
}

// publishRejection raises one event for the whole batch so the auditors get a
// single resubmission notice.
func (u *Usecase) publishRejection(ctx context.Context, errs []*entity.IngestError) {
	if u.events == nil || u.eventID == nil {
		return
	}

	event := entity.BatchRejection{
		EventID:    u.eventID.Generate(),
		BatchID:    u.runID.Generate(),
		RejectedAt: u.clock.Now().Unix(),
		Files:      make([]entity.IngestError, 0, len(errs)),
	}
	for _, ierr := range errs {
		event.Files = append(event.Files, *ierr)
	}

	if err := u.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish batch rejection", "batch_id", event.BatchID, "event_id", event.EventID, "files", len(event.Files), "error", err)
	}
}

func summarize(run *entity.Run) Summary {
	return Summary{
		Completed: run.Master.Len(),
		Pending:   run.Pending.Len(),
		Sampled:   run.Sample.Len(),
		Auditors:  len(run.Stats),
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("run not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
