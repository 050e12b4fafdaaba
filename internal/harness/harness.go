package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/turing/internal/compiler"
	"github.com/roach88/turing/internal/driver"
	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/store"
)

// Harness is the scenario execution engine.
// It runs cases with a deterministic clock and run IDs.
type Harness struct {
	store  *store.Store
	driver *driver.Driver
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Load the description (file or inline) and build the Config
//  2. Check a rejected description against load_error
//  3. Run every case through the driver, recording traces
//  4. Replay the recorded runs and report any mismatch
//
// The returned error is reserved for infrastructure failures; expectation
// mismatches are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	result := NewResult()

	cfg, err := buildConfig(scenario)
	if err != nil {
		code := loadErrorCode(err)
		if code == "" {
			return nil, err
		}
		result.LoadError = code
		switch {
		case scenario.LoadError == "":
			result.AddError(fmt.Sprintf("description rejected: %v", err))
		case scenario.LoadError != code:
			result.AddError(fmt.Sprintf("load_error: expected %s, got %s (%v)", scenario.LoadError, code, err))
		}
		return result, nil
	}
	result.MachineHash = cfg.Hash()
	if scenario.LoadError != "" {
		result.AddError(fmt.Sprintf("load_error: expected %s, description was accepted", scenario.LoadError))
		return result, nil
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store:  st,
		logger: logger,
		driver: driver.New(cfg,
			driver.WithStore(st),
			driver.WithCapture(),
			driver.WithClock(driver.NewClock()),
			driver.WithIDGenerator(driver.NewFixedGenerator("case")),
			driver.WithLogger(logger),
			driver.WithMaxSteps(scenario.MaxSteps),
			driver.WithMaxTape(scenario.MaxTape),
		),
	}

	ctx := context.Background()
	if err := h.executeCases(ctx, scenario.Cases, result); err != nil {
		return nil, fmt.Errorf("failed to execute cases: %w", err)
	}
	if err := h.verifyReplay(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to replay cases: %w", err)
	}

	return result, nil
}

func buildConfig(s *Scenario) (*engine.Config, error) {
	var (
		desc *ir.Description
		err  error
	)
	if s.Machine != "" {
		desc, err = compiler.LoadFile(s.Machine)
	} else {
		format := compiler.Format(s.Format)
		if format == "" {
			format = compiler.FormatText
		}
		desc, err = compiler.LoadBytes([]byte(s.Definition), s.Name, format)
	}
	if err != nil {
		return nil, err
	}

	policy := engine.DuplicateReject
	if s.AllowOverwrite {
		policy = engine.DuplicateLastWins
	}
	return engine.NewConfig(*desc, engine.WithDuplicatePolicy(policy))
}

// loadErrorCode classifies a description error. Errors that are not about
// the description itself (missing file, I/O) return "".
func loadErrorCode(err error) string {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		return string(engine.ErrCodeMalformedDescription)
	}
	return string(engine.CodeOf(err))
}

func (h *Harness) executeCases(ctx context.Context, cases []Case, result *Result) error {
	for i, c := range cases {
		out, err := h.driver.RunLine(ctx, i+1, c.Tape)
		if err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}

		cr := CaseResult{
			Tape:     c.Tape,
			Output:   out.Result.Tape,
			State:    uint64(out.Result.State),
			Accepted: out.Accepted(),
			Steps:    out.Result.Steps,
			Error:    string(engine.CodeOf(out.Err)),
			Trace:    make([]string, 0, len(out.Trace)),
		}
		for _, snap := range out.Trace {
			cr.Trace = append(cr.Trace, snap.String())
		}
		result.Cases = append(result.Cases, cr)

		for _, msg := range checkExpect(c.Expect, cr) {
			result.AddError(fmt.Sprintf("cases[%d] %q: %s", i, c.Tape, msg))
		}
		h.logger.Debug("case executed", "case", i, "tape", c.Tape, "output", cr.Output, "error", cr.Error)
	}
	return nil
}

func checkExpect(want Expect, got CaseResult) []string {
	var errs []string
	if want.Error != "" || got.Error != "" {
		if want.Error != got.Error {
			errs = append(errs, fmt.Sprintf("error: expected %q, got %q", want.Error, got.Error))
		}
		return errs
	}
	if want.Tape != got.Output {
		errs = append(errs, fmt.Sprintf("tape: expected %q, got %q", want.Tape, got.Output))
	}
	if want.Accepted != got.Accepted {
		errs = append(errs, fmt.Sprintf("accepted: expected %t, got %t", want.Accepted, got.Accepted))
	}
	if want.State != nil && *want.State != got.State {
		errs = append(errs, fmt.Sprintf("state: expected %d, got %d", *want.State, got.State))
	}
	if want.Steps != nil && *want.Steps != got.Steps {
		errs = append(errs, fmt.Sprintf("steps: expected %d, got %d", *want.Steps, got.Steps))
	}
	return errs
}

func (h *Harness) verifyReplay(ctx context.Context, result *Result) error {
	runs, err := h.store.ListRuns(ctx, "")
	if err != nil {
		return err
	}
	report, err := driver.Replay(ctx, h.store, runs)
	if err != nil {
		return err
	}
	for _, mm := range report.Mismatches {
		result.AddError(fmt.Sprintf("replay %s: %s: recorded %q, replayed %q", mm.RunID, mm.Field, mm.Want, mm.Got))
	}
	return nil
}
