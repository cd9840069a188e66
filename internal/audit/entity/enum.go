package entity

type ErrorClass string

const (
	ErrorClassFile   ErrorClass = "FILE ERROR"
	ErrorClassHeader ErrorClass = "HEADER ERROR"
	ErrorClassProof  ErrorClass = "PROOF ERROR"
)

type RunState string

const (
	RunStateAwaitingInput RunState = "AWAITING_INPUT"
	RunStateProcessed     RunState = "PROCESSED"
)

type ExportKind string

const (
	ExportMaster  ExportKind = "master"
	ExportPending ExportKind = "pending"
	ExportSample  ExportKind = "sample"
	ExportStats   ExportKind = "stats"
)

// FileName is the download name offered for an export.
func (k ExportKind) FileName() string {
	switch k {
	case ExportMaster:
		return "Master_Final.xlsx"
	case ExportPending:
		return "Worklist_Pending.xlsx"
	case ExportSample:
		return "Auditor_Sample.xlsx"
	case ExportStats:
		return "Performance.xlsx"
	default:
		return ""
	}
}
