// Package pipeline is the collation engine for auditor submissions.
//
// A run reads every uploaded file concurrently, rejects files that break the
// required schema or the proof rule, and then, on a single goroutine, splits
// the union into completed and pending work, counts decisions per auditor and
// draws a stratified verification sample. Results can be encoded as xlsx
// workbooks for download.
package pipeline
