package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/driver"
	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Input          string
	Trace          bool
	Color          bool
	MaxSteps       uint64
	MaxTape        int
	AllowOverwrite bool
	Database       string

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator driver.RunIDGenerator
}

// RunLineResult is the JSON payload for one processed input line.
type RunLineResult struct {
	Line     int      `json:"line"`
	RunID    string   `json:"run_id"`
	Input    string   `json:"input"`
	Tape     string   `json:"tape"`
	State    ir.State `json:"state"`
	Accepted bool     `json:"accepted"`
	Steps    uint64   `json:"steps"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <description>",
		Short: "Run a machine on input tapes, one per line",
		Long: `Load a machine description and run it once for every input line.

Each line is the initial tape. After the machine halts its final tape is
printed to stdout. Lines with symbols outside the alphabet, or runs that hit
--max-steps or --max-tape, are reported on stderr and processing continues.

Descriptions ending in .cue are read as CUE; anything else uses the text
format.

Exit codes:
  0 - Last line accepted (or no input)
  1 - Last line rejected or failed
  2 - Command error (bad description, unreadable input, database error)

Examples:
  echo 111 | tm run unary.tm
  tm run binary.tm --input tapes.txt --trace --color
  tm run binary.tm --input tapes.txt --db runs.db --max-steps 10000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachine(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "read tapes from file instead of stdin")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print every configuration to stderr")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "highlight the head in traces")
	cmd.Flags().Uint64Var(&opts.MaxSteps, "max-steps", 0, "fail a run after this many steps (0 = unlimited)")
	cmd.Flags().IntVar(&opts.MaxTape, "max-tape", 0, "fail a run whose tape grows past this many cells (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.AllowOverwrite, "allow-overwrite", false, "let a later duplicate rule replace an earlier one")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")

	return cmd
}

func runMachine(opts *RunOptions, path string, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(path, opts.AllowOverwrite)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	slog.Debug("machine loaded", "path", path, "hash", cfg.Hash(), "rules", cfg.Table().Len())

	var in io.Reader = cmd.InOrStdin()
	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("cannot open input: %v", err), nil)
			return silentExit(ExitCommandError, "cannot open input")
		}
		defer f.Close()
		in = f
	}

	dopts := []driver.Option{
		driver.WithLogger(slog.Default()),
		driver.WithMaxSteps(opts.MaxSteps),
		driver.WithMaxTape(opts.MaxTape),
	}
	if opts.IDGenerator != nil {
		dopts = append(dopts, driver.WithIDGenerator(opts.IDGenerator))
	}
	if opts.Trace {
		var style engine.HeadStyle
		if opts.Color {
			style = headHighlight()
		}
		dopts = append(dopts, driver.WithTrace(cmd.ErrOrStderr(), style))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		seq, err := st.MaxSeq(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read database", err)
		}
		dopts = append(dopts, driver.WithStore(st), driver.WithClock(driver.NewClockAt(seq)))
		if opts.Trace {
			dopts = append(dopts, driver.WithCapture())
		}
	}

	d := driver.New(cfg, dopts...)
	sum, err := d.Process(ctx, in, func(out driver.Outcome) error {
		return emitOutcome(formatter, out)
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "processing failed", err)
	}

	if !sum.LastAccepted {
		return silentExit(ExitFailure, "last input rejected")
	}
	return nil
}

func emitOutcome(f *OutputFormatter, out driver.Outcome) error {
	res := RunLineResult{
		Line:     out.Line,
		RunID:    out.RunID,
		Input:    out.Input,
		Tape:     out.Result.Tape,
		State:    out.Result.State,
		Accepted: out.Accepted(),
		Steps:    out.Result.Steps,
	}

	if out.Err != nil {
		msg := fmt.Sprintf("line %d: %v", out.Line, out.Err)
		if f.Format == "json" {
			return json.NewEncoder(f.Writer).Encode(CLIResponse{
				Status: "error",
				Data:   res,
				Error:  &CLIError{Code: runErrorCode(out.Err), Message: msg},
			})
		}
		return f.Error(runErrorCode(out.Err), msg, res)
	}

	if f.Format == "json" {
		return f.Success(res)
	}
	_, err := fmt.Fprintln(f.Writer, out.Result.Tape)
	return err
}

// reportLoadError prints a description error and returns the exit error.
func reportLoadError(f *OutputFormatter, err error) error {
	var le *LoadError
	if !errors.As(err, &le) {
		le = classifyLoadError(err)
	}
	var details any
	if le.Line > 0 {
		details = map[string]int{"line": le.Line}
	}
	msg := le.Message
	if le.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", le.Line, le.Message)
	}
	_ = f.Error(le.Code, msg, details)
	return &ExitError{Code: ExitCommandError, Message: "invalid description", Err: err, Silent: true}
}

// signalContext returns the command context cancelled on SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
