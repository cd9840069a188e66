package usecase

import "github.com/shandysiswandi/hijackaudit/internal/audit/entity"

type CollateInput struct {
	Files []entity.UploadedFile
	// SamplePercent is 0..100; nil falls back to the configured default.
	SamplePercent *float64
	Verifiers     []string
}

type Summary struct {
	Completed int
	Pending   int
	Sampled   int
	Auditors  int
}

type CollateResult struct {
	RunID      string
	State      entity.RunState
	Summary    Summary
	Stratified bool
	// Errors lists every rejected file; when set no run was stored.
	Errors []string
}

type SummaryResult struct {
	RunID      string
	State      entity.RunState
	Summary    Summary
	Fraction   float64
	Verifiers  []string
	Stratified bool
	Stats      []entity.StatsRow
}

type ExportResult struct {
	FileName string
	Content  []byte
}
