package entity

type Run struct {
	ID         string
	State      RunState
	CreatedAt  int64
	Fraction   float64
	Verifiers  []string
	Stratified bool

	Master  *Table
	Pending *Table
	Sample  *Table
	Stats   []StatsRow
}

// BatchRejection is raised once for a batch that had at least one file
// rejected. Files keeps upload order.
type BatchRejection struct {
	EventID    string
	BatchID    string
	RejectedAt int64
	Files      []IngestError
}
