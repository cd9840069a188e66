package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
)

// Result is the outcome of one run. When Errors is not empty the four data
// outputs are nil: partial success is not offered.
type Result struct {
	Master     *entity.Table
	Pending    *entity.Table
	Sample     *entity.Table
	Stats      []entity.StatsRow
	Errors     []*entity.IngestError
	Stratified bool
}

type Config struct {
	Schema Schema
	// Workers bounds concurrent file ingestion; runtime.NumCPU() when < 1.
	Workers int
	// Rand drives sampling. A time-seeded source is used when nil.
	Rand *rand.Rand
}

type Engine struct {
	validator *Validator
	workers   int

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

func NewEngine(cfg Config) *Engine {
	rng := cfg.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	return &Engine{
		validator: NewValidator(cfg.Schema),
		workers:   cfg.Workers,
		rng:       rng,
	}
}

func (e *Engine) Process(ctx context.Context, files []entity.UploadedFile, fraction float64, verifiers []string) Result {
	tables, errs := e.validator.IngestAll(ctx, files, e.workers)
	if len(errs) > 0 {
		slog.WarnContext(ctx, "collation aborted by rejected files", "files", len(files), "rejected", len(errs))
		return Result{Errors: errs}
	}
	if len(tables) == 0 {
		return Result{}
	}

	e.mu.Lock()
	agg := Aggregate(tables, fraction, verifiers, e.rng)
	e.mu.Unlock()

	if agg.Sampling.Err != nil {
		slog.WarnContext(ctx, "stratified sampling failed, using unstratified fallback", "error", agg.Sampling.Err)
	}

	slog.InfoContext(ctx, "collation finished",
		"files", len(files),
		"master", agg.Master.Len(),
		"pending", agg.Pending.Len(),
		"sample", agg.Sampling.Table.Len(),
		"auditors", len(agg.Stats),
	)

	return Result{
		Master:     agg.Master,
		Pending:    agg.Pending,
		Sample:     agg.Sampling.Table,
		Stats:      agg.Stats,
		Stratified: agg.Sampling.Stratified,
	}
}

// ParseVerifiers splits a comma separated list, dropping blank entries.
func ParseVerifiers(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
