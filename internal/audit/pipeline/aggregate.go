package pipeline

import (
	"math/rand/v2"
	"strings"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
)

// Aggregation is everything derived from the validated tables of one run.
type Aggregation struct {
	Master   *entity.Table
	Pending  *entity.Table
	Stats    []entity.StatsRow
	Sampling SampleResult
}

// Aggregate expects at least one table; callers short-circuit when every file
// was rejected.
func Aggregate(tables []*entity.Table, fraction float64, verifiers []string, rng *rand.Rand) Aggregation {
	all := Concat(tables)
	master, pending := Partition(all)

	return Aggregation{
		Master:   master,
		Pending:  pending,
		Stats:    ComputeStats(all),
		Sampling: Sample(master, fraction, verifiers, rng),
	}
}

// Concat appends tables in order. Extra columns are merged in first-encounter order.
func Concat(tables []*entity.Table) *entity.Table {
	total := 0
	for _, t := range tables {
		total += t.Len()
	}

	out := &entity.Table{Records: make([]entity.Record, 0, total)}
	seen := make(map[string]struct{})
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out.Columns = append(out.Columns, c)
		}
		out.Records = append(out.Records, t.Records...)
	}

	return out
}

// Partition splits records into completed (master) and pending work.
func Partition(all *entity.Table) (*entity.Table, *entity.Table) {
	master := &entity.Table{Columns: all.Columns}
	pending := &entity.Table{Columns: all.Columns}

	for _, rec := range all.Records {
		if rec.Completed() {
			master.Records = append(master.Records, rec)
		} else {
			pending.Records = append(pending.Records, rec)
		}
	}

	return master, pending
}

// ComputeStats counts keyword occurrences in the lower-cased decision of every
// row, pending rows included. Counting is by substring, so "invalid" adds to
// Valid as well as Invalid.
func ComputeStats(all *entity.Table) []entity.StatsRow {
	var order []string
	byAuditor := make(map[string]*entity.StatsRow)

	for _, rec := range all.Records {
		row, ok := byAuditor[rec.SourceAuditor]
		if !ok {
			row = &entity.StatsRow{Auditor: rec.SourceAuditor}
			byAuditor[rec.SourceAuditor] = row
			order = append(order, rec.SourceAuditor)
		}

		if !rec.Decision.Valid {
			continue
		}
		decision := strings.ToLower(rec.Decision.Value)
		row.Valid += strings.Count(decision, "valid")
		row.Invalid += strings.Count(decision, "invalid")
		row.Plausible += strings.Count(decision, "plausible")
	}

	stats := make([]entity.StatsRow, 0, len(order))
	for _, a := range order {
		stats = append(stats, *byAuditor[a])
	}
	return stats
}
