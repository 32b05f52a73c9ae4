// Package aggregates runs the multi-statement writes: each operation opens
// one transaction, maps failures onto API errors and reports to metrics.
package aggregates
