package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/store"
)

// Mismatch describes one field of a replayed run that differs from the
// recorded run.
type Mismatch struct {
	RunID string `json:"run_id"`
	Field string `json:"field"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// ReplayReport is the result of replaying recorded runs.
type ReplayReport struct {
	Runs       int        `json:"runs"`
	Matched    int        `json:"matched"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether every replayed run reproduced its recorded outcome.
func (r ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay re-executes runs from their stored machine definitions and
// compares each outcome with the recorded one.
//
// Runs are replayed under the step and tape limits they were recorded with.
// Stored descriptions are rebuilt with DuplicateLastWins: a description that
// was accepted under rejection has no duplicates, so the table is identical
// either way. When steps were recorded, the trace is compared too.
func Replay(ctx context.Context, st *store.Store, runs []store.Run) (ReplayReport, error) {
	report := ReplayReport{Mismatches: []Mismatch{}}
	configs := make(map[string]*engine.Config)

	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		cfg, ok := configs[run.MachineHash]
		if !ok {
			m, err := st.ReadMachine(ctx, run.MachineHash)
			if err != nil {
				return report, fmt.Errorf("replay run %s: %w", run.ID, err)
			}
			cfg, err = engine.NewConfig(m.Description, engine.WithDuplicatePolicy(engine.DuplicateLastWins))
			if err != nil {
				return report, fmt.Errorf("replay run %s: rebuild machine: %w", run.ID, err)
			}
			configs[run.MachineHash] = cfg
		}

		recorded, err := st.ReadSteps(ctx, run.ID)
		if err != nil {
			return report, fmt.Errorf("replay run %s: %w", run.ID, err)
		}

		got, trace, err := replayOne(cfg, run, len(recorded) > 0)
		if err != nil {
			return report, fmt.Errorf("replay run %s: %w", run.ID, err)
		}

		mismatches := compareRun(run, got)
		if len(recorded) > 0 {
			mismatches = append(mismatches, compareTrace(run.ID, recorded, trace)...)
		}

		report.Runs++
		if len(mismatches) == 0 {
			report.Matched++
			slog.Debug("run replayed", "run", run.ID, "seq", run.Seq)
			continue
		}
		for _, mm := range mismatches {
			slog.Warn("replay mismatch", "run", run.ID, "field", mm.Field, "want", mm.Want, "got", mm.Got)
		}
		report.Mismatches = append(report.Mismatches, mismatches...)
	}

	slog.Info("replay complete", "runs", report.Runs, "matched", report.Matched, "mismatches", len(report.Mismatches))
	return report, nil
}

// replayOne re-executes a single run and returns its stored form.
func replayOne(cfg *engine.Config, run store.Run, capture bool) (store.Run, []engine.Snapshot, error) {
	opts := []engine.Option{
		engine.WithMaxSteps(run.MaxSteps),
		engine.WithMaxTape(run.MaxTape),
	}
	var rec *engine.Recorder
	if capture {
		rec = &engine.Recorder{}
		opts = append(opts, engine.WithObserver(rec))
	}

	m := engine.New(cfg, opts...)
	var (
		res    engine.Result
		runErr error
	)
	if err := m.Reset(run.Input); err != nil {
		runErr = err
		res = engine.Result{State: m.State(), Tape: m.Tape()}
	} else {
		res, runErr = m.Run()
	}

	accepted := runErr == nil && res.Accepted
	hash, err := ir.OutcomeHash(cfg.Hash(), run.Input, res.Tape, res.State, accepted, res.Steps)
	if err != nil {
		return store.Run{}, nil, err
	}

	got := store.Run{
		ID:          run.ID,
		Output:      res.Tape,
		FinalState:  res.State,
		Accepted:    accepted,
		Steps:       res.Steps,
		ErrorCode:   string(engine.CodeOf(runErr)),
		OutcomeHash: hash,
	}
	var trace []engine.Snapshot
	if rec != nil {
		trace = rec.Snapshots
	}
	return got, trace, nil
}

func compareRun(want, got store.Run) []Mismatch {
	var out []Mismatch
	add := func(field, w, g string) {
		if w != g {
			out = append(out, Mismatch{RunID: want.ID, Field: field, Want: w, Got: g})
		}
	}
	add("output", want.Output, got.Output)
	add("state", fmt.Sprint(want.FinalState), fmt.Sprint(got.FinalState))
	add("accepted", fmt.Sprint(want.Accepted), fmt.Sprint(got.Accepted))
	add("steps", fmt.Sprint(want.Steps), fmt.Sprint(got.Steps))
	add("error_code", want.ErrorCode, got.ErrorCode)
	add("outcome_hash", want.OutcomeHash, got.OutcomeHash)
	return out
}

func compareTrace(runID string, want, got []engine.Snapshot) []Mismatch {
	if len(want) != len(got) {
		return []Mismatch{{
			RunID: runID,
			Field: "trace_length",
			Want:  fmt.Sprint(len(want)),
			Got:   fmt.Sprint(len(got)),
		}}
	}
	for i := range want {
		if want[i] != got[i] {
			return []Mismatch{{
				RunID: runID,
				Field: fmt.Sprintf("trace[%d]", i),
				Want:  fmt.Sprintf("%+v", want[i]),
				Got:   fmt.Sprintf("%+v", got[i]),
			}}
		}
	}
	return nil
}
