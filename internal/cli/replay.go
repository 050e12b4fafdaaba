package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/driver"
	"github.com/roach88/turing/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Machine  string // optional - one machine hash only
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute recorded runs and verify determinism",
		Long: `Re-execute every run recorded by "tm run --db" from its stored machine
definition and compare the outcome with the recorded one.

Each run is replayed under the step and tape limits it was recorded with.
Output tape, final state, acceptance, step count, error code and outcome
hash must all match; runs recorded with --trace also compare every step.

Exit codes:
  0 - All runs reproduced
  1 - One or more runs differ
  2 - Command error (database not found, etc.)

Examples:
  tm replay --db runs.db
  tm replay --db runs.db --machine 3f9a...
  tm replay --db runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Machine, "machine", "", "replay runs of this machine hash only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	ctx, cancel := signalContext(cmd)
	defer cancel()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, opts.Machine)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	report, err := driver.Replay(ctx, st, runs)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, report)
	}
	return outputReplayText(cmd, report)
}

func outputReplayJSON(cmd *cobra.Command, report driver.ReplayReport) error {
	response := CLIResponse{Status: "ok", Data: report}
	if !report.OK() {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_NONDETERMINISTIC",
			Message: fmt.Sprintf("%d of %d run(s) differ", report.Runs-report.Matched, report.Runs),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !report.OK() {
		return silentExit(ExitFailure, "replay mismatch")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, report driver.ReplayReport) error {
	w := cmd.OutOrStdout()

	if report.Runs == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	if report.OK() {
		fmt.Fprintln(w, successMsg("%d run(s) reproduced", report.Runs))
		return nil
	}

	fmt.Fprintln(w, errorMsg("%d of %d run(s) differ", report.Runs-report.Matched, report.Runs))
	for _, mm := range report.Mismatches {
		fmt.Fprintf(w, "  %s %s: recorded %q, replayed %q\n", mm.RunID, mm.Field, mm.Want, mm.Got)
	}
	return silentExit(ExitFailure, "replay mismatch")
}
