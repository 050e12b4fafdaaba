package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/driver"
	"github.com/roach88/turing/internal/metrics"
	"github.com/roach88/turing/internal/server"
	"github.com/roach88/turing/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr           string
	MaxSteps       uint64
	MaxTape        int
	AllowOverwrite bool
	Database       string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <description>",
		Short: "Serve a machine over HTTP",
		Long: `Load a machine description and run it for HTTP clients.

Endpoints:
  POST /runs     {"tape": "..."} runs the machine once
  GET  /machine  the loaded definition and its hash
  GET  /metrics  Prometheus metrics

Runs that fail (invalid tape symbol, limits exceeded) answer 422 with the
error code. The server stops gracefully on SIGINT or SIGTERM.

Exit codes:
  0 - Server stopped cleanly
  2 - Command error (bad description, address in use, database error)

Examples:
  tm serve unary.tm
  tm serve binary.tm --addr :9090 --max-steps 100000 --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().Uint64Var(&opts.MaxSteps, "max-steps", 0, "fail a run after this many steps (0 = unlimited)")
	cmd.Flags().IntVar(&opts.MaxTape, "max-tape", 0, "fail a run whose tape grows past this many cells (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.AllowOverwrite, "allow-overwrite", false, "let a later duplicate rule replace an earlier one")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
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

	ctx, cancel := signalContext(cmd)
	defer cancel()

	collector := metrics.New()
	dopts := []driver.Option{
		driver.WithLogger(slog.Default()),
		driver.WithMetrics(collector),
		driver.WithMaxSteps(opts.MaxSteps),
		driver.WithMaxTape(opts.MaxTape),
	}

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
	}

	d := driver.New(cfg, dopts...)
	slog.Info("machine loaded", "path", path, "hash", cfg.Hash(), "rules", cfg.Table().Len())

	if err := server.ListenAndServe(ctx, opts.Addr, server.NewHandler(d, collector)); err != nil {
		return WrapExitError(ExitCommandError, "server failed", err)
	}
	return nil
}
