// Package driver feeds input tapes to a machine, one run per line.
//
// The driver owns everything around a single run: resetting a fresh
// Machine over the shared Config, isolating per-run errors so the next line
// is still processed, stamping each run with an ID and a logical seq, and
// optionally writing traces, metrics and a persistent run log.
//
// Replay re-executes runs from the run log and reports any field that
// differs from what was recorded.
package driver
