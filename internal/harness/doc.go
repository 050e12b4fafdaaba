// Package harness runs YAML conformance scenarios against machine
// descriptions.
//
// A scenario names a description (a file or an inline definition), the
// limits to run it under and a list of cases. Each case is one input tape
// with the expected output tape, verdict, and optionally final state, step
// count or error code. A scenario may instead expect the description itself
// to be rejected.
//
// # Determinism
//
// Every scenario runs against a fresh in-memory store with a fixed run ID
// generator and a logical clock starting at 0, so traces are reproducible.
// After the cases run, the recorded runs are replayed and any mismatch fails
// the scenario.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of a scenario's traces against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
