// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type bounds concurrency and collects both returned errors and
// recovered panics, so a batch of tasks can be awaited as one.
package pkgroutine
