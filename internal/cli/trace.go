package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Machine  string // optional - filter run list to one machine hash
}

// RunRecord is the JSON form of a stored run.
type RunRecord struct {
	ID          string   `json:"id"`
	MachineHash string   `json:"machine_hash"`
	Seq         int64    `json:"seq"`
	Line        int      `json:"line"`
	Input       string   `json:"input"`
	Output      string   `json:"output"`
	State       ir.State `json:"state"`
	Accepted    bool     `json:"accepted"`
	Steps       uint64   `json:"steps"`
	ErrorCode   string   `json:"error_code,omitempty"`
	Error       string   `json:"error,omitempty"`
	OutcomeHash string   `json:"outcome_hash"`
}

// TraceResult holds the output of a single-run trace.
type TraceResult struct {
	Run   RunRecord         `json:"run"`
	Steps []engine.Snapshot `json:"steps"`
	Lines []string          `json:"lines"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect runs recorded in a database",
		Long: `List the runs recorded by "tm run --db", or show one run in detail.

Without --run, prints every recorded run in sequence order. With --run,
prints the run and, if it was recorded with --trace, every configuration
it passed through.

Exit codes:
  0 - Success
  2 - Command error (database error, run not found)

Examples:
  tm trace --db runs.db
  tm trace --db runs.db --machine 3f9a...
  tm trace --db runs.db --run 0192f3c4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run with its steps")
	cmd.Flags().StringVar(&opts.Machine, "machine", "", "only list runs of this machine hash")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx, opts.Machine)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		records := make([]RunRecord, len(runs))
		for i, r := range runs {
			records[i] = toRunRecord(r)
		}
		if opts.Format == "json" {
			return formatter.Success(records)
		}
		return outputRunList(cmd.OutOrStdout(), records)
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		return silentExit(ExitCommandError, "run not found")
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	steps, err := st.ReadSteps(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := TraceResult{
		Run:   toRunRecord(run),
		Steps: steps,
		Lines: make([]string, len(steps)),
	}
	for i, s := range steps {
		result.Lines[i] = s.String()
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputTraceText(cmd.OutOrStdout(), result)
}

func toRunRecord(r store.Run) RunRecord {
	return RunRecord{
		ID:          r.ID,
		MachineHash: r.MachineHash,
		Seq:         r.Seq,
		Line:        r.Line,
		Input:       r.Input,
		Output:      r.Output,
		State:       r.FinalState,
		Accepted:    r.Accepted,
		Steps:       r.Steps,
		ErrorCode:   r.ErrorCode,
		Error:       r.ErrorMessage,
		OutcomeHash: r.OutcomeHash,
	}
}

// runStatus is the one-word outcome shown in text output.
func runStatus(r RunRecord) string {
	switch {
	case r.ErrorCode != "":
		return r.ErrorCode
	case r.Accepted:
		return "accepted"
	default:
		return "rejected"
	}
}

func outputRunList(w io.Writer, records []RunRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			fmt.Sprint(r.Seq),
			r.ID,
			fmt.Sprint(r.Line),
			r.Input,
			r.Output,
			fmt.Sprint(r.State),
			fmt.Sprint(r.Steps),
			runStatus(r),
		}
	}
	fmt.Fprintln(w, renderTable(
		[]string{"SEQ", "RUN", "LINE", "INPUT", "OUTPUT", "STATE", "STEPS", "STATUS"},
		rows,
	))
	return nil
}

func outputTraceText(w io.Writer, result TraceResult) error {
	r := result.Run
	pairs := []pair{
		kv("run", r.ID),
		kv("machine", r.MachineHash),
		kv("seq", fmt.Sprint(r.Seq)),
		kv("line", fmt.Sprint(r.Line)),
		kv("input", r.Input),
		kv("output", r.Output),
		kv("state", fmt.Sprint(r.State)),
		kv("steps", fmt.Sprint(r.Steps)),
		kv("status", runStatus(r)),
	}
	if r.Error != "" {
		pairs = append(pairs, kv("error", r.Error))
	}
	fmt.Fprint(w, keyValues("", pairs...))

	if len(result.Lines) == 0 {
		fmt.Fprintln(w, "\nNo steps recorded (run with --trace to record them).")
		return nil
	}
	fmt.Fprintln(w)
	for _, line := range result.Lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
