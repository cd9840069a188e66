package entity

import "strings"

// NullString is a cell value that may be absent (an empty cell in the source file).
type NullString struct {
	Value string
	Valid bool
}

func NewString(v string) NullString {
	return NullString{Value: v, Valid: true}
}

// Blank reports whether the cell is null or holds only whitespace.
func (n NullString) Blank() bool {
	return !n.Valid || strings.TrimSpace(n.Value) == ""
}

// Record is one row of an auditor submission.
type Record struct {
	Row              int
	Decision         NullString
	UniqueID         string
	ProofLink        NullString
	SourceAuditor    string
	AssignedVerifier string

	// Extra holds columns outside the required schema, keyed by header.
	Extra map[string]string
}

// Completed reports whether the auditor already recorded a decision.
func (r Record) Completed() bool {
	return !r.Decision.Blank()
}

// NormalizedDecision is the trimmed, lower-cased decision.
func (r Record) NormalizedDecision() string {
	return strings.ToLower(strings.TrimSpace(r.Decision.Value))
}

// Table is an ordered set of records sharing a schema.
type Table struct {
	// Columns lists the extra (non-required) headers in first-encounter order.
	Columns []string
	Records []Record
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

type StatsRow struct {
	Auditor   string
	Valid     int
	Invalid   int
	Plausible int
}
