package inbound

import (
	"net/http"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/shandysiswandi/hijackaudit/internal/audit/usecase"
)

type Summary struct {
	Completed int `json:"completed_entries"`
	Pending   int `json:"pending_tasklist"`
	Sampled   int `json:"verification_batch"`
	Auditors  int `json:"active_auditors"`
}

type StatsRow struct {
	Auditor   string `json:"auditor"`
	Valid     int    `json:"valid"`
	Invalid   int    `json:"invalid"`
	Plausible int    `json:"plausible"`
}

type CollateResponse struct {
	RunID      string          `json:"run_id"`
	State      entity.RunState `json:"state"`
	Summary    Summary         `json:"summary"`
	Stratified bool            `json:"stratified"`
}

func (CollateResponse) StatusCode() int {
	return http.StatusCreated
}

func (CollateResponse) Message() string {
	return "collation completed"
}

type RejectedResponse struct {
	State  entity.RunState `json:"state"`
	Errors []string        `json:"errors"`
}

func (RejectedResponse) StatusCode() int {
	return http.StatusUnprocessableEntity
}

func (RejectedResponse) Message() string {
	return "fix the flagged files and resubmit the whole batch"
}

type SummaryResponse struct {
	RunID         string          `json:"run_id"`
	State         entity.RunState `json:"state"`
	Summary       Summary         `json:"summary"`
	SamplePercent float64         `json:"sample_percent"`
	Verifiers     []string        `json:"verifiers"`
	Stratified    bool            `json:"stratified"`
	Stats         []StatsRow      `json:"stats"`
}

func toHTTPSummary(s usecase.Summary) Summary {
	return Summary{
		Completed: s.Completed,
		Pending:   s.Pending,
		Sampled:   s.Sampled,
		Auditors:  s.Auditors,
	}
}

func toHTTPStats(stats []entity.StatsRow) []StatsRow {
	out := make([]StatsRow, 0, len(stats))
	for _, s := range stats {
		out = append(out, StatsRow{
			Auditor:   s.Auditor,
			Valid:     s.Valid,
			Invalid:   s.Invalid,
			Plausible: s.Plausible,
		})
	}
	return out
}
