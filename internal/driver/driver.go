package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/metrics"
	"github.com/roach88/turing/internal/store"
)

// maxLineSize bounds a single input tape line.
const maxLineSize = 64 << 20

// Outcome is the result of processing one input line.
//
// Err is a per-run error (INVALID_TAPE_SYMBOL, TAPE_OVERFLOW,
// STEPS_EXCEEDED). It never aborts processing of later lines.
type Outcome struct {
	RunID  string
	Seq    int64
	Line   int
	Input  string
	Result engine.Result
	Err    error
	Trace  []engine.Snapshot
}

// Accepted reports whether the run halted in an accepting state.
// A run that errored is never accepted.
func (o Outcome) Accepted() bool {
	return o.Err == nil && o.Result.Accepted
}

// Summary aggregates the outcomes of a Process call.
type Summary struct {
	Lines    int
	Accepted int
	Rejected int
	Failed   int

	// LastAccepted is the acceptance of the last processed line. It is true
	// when no lines were processed.
	LastAccepted bool
}

// Driver feeds input tapes to a machine definition, one run per line.
//
// A Driver is safe for concurrent use: every RunLine builds its own
// Machine over the shared Config.
type Driver struct {
	cfg      *engine.Config
	store    *store.Store
	metrics  *metrics.Collector
	clock    *Clock
	ids      RunIDGenerator
	logger   *slog.Logger
	maxSteps uint64
	maxTape  int

	trace   io.Writer
	style   engine.HeadStyle
	capture bool

	registerOnce sync.Once
	registerErr  error
}

// Option configures a Driver.
type Option func(*Driver)

// WithStore persists every run to s. The machine definition is written on
// the first run.
func WithStore(s *store.Store) Option {
	return func(d *Driver) {
		d.store = s
	}
}

// WithMetrics records every run in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Driver) {
		d.metrics = c
	}
}

// WithTrace writes one rendered configuration per step attempt to w as the
// run progresses. Lines of concurrent runs may interleave but are never split.
func WithTrace(w io.Writer, style engine.HeadStyle) Option {
	return func(d *Driver) {
		d.trace = w
		d.style = style
	}
}

// WithCapture keeps every configuration in Outcome.Trace and, with a
// store, persists them as step rows.
func WithCapture() Option {
	return func(d *Driver) {
		d.capture = true
	}
}

// WithMaxSteps limits every run to n transitions. 0 means unlimited.
func WithMaxSteps(n uint64) Option {
	return func(d *Driver) {
		d.maxSteps = n
	}
}

// WithMaxTape caps the materialized window of every run at n cells.
func WithMaxTape(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.maxTape = n
		}
	}
}

// WithIDGenerator sets the run ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g RunIDGenerator) Option {
	return func(d *Driver) {
		d.ids = g
	}
}

// WithClock sets the logical clock used to stamp runs.
func WithClock(c *Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// New creates a Driver for cfg.
func New(cfg *engine.Config, opts ...Option) *Driver {
	d := &Driver{
		cfg:     cfg,
		clock:   NewClock(),
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
		maxTape: engine.DefaultMaxTape,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.trace != nil {
		d.trace = &lockedWriter{w: d.trace}
	}
	return d
}

// Config returns the machine definition the driver runs.
func (d *Driver) Config() *engine.Config {
	return d.cfg
}

// RunLine resets a machine with input and runs it to completion.
//
// The returned error is an infrastructure failure (cancelled context,
// trace or store write). Run failures are reported in Outcome.Err. The
// context is checked before every step, so cancelling it stops a run that
// would never halt.
func (d *Driver) RunLine(ctx context.Context, line int, input string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if err := d.register(ctx); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		RunID: d.ids.Generate(),
		Seq:   d.clock.Next(),
		Line:  line,
		Input: input,
	}

	opts := []engine.Option{
		engine.WithMaxSteps(d.maxSteps),
		engine.WithMaxTape(d.maxTape),
	}
	if done := ctx.Done(); done != nil {
		opts = append(opts, engine.WithObserver(engine.ObserverFunc(func(engine.Configuration) error {
			select {
			case <-done:
				return ctx.Err()
			default:
				return nil
			}
		})))
	}
	var rec *engine.Recorder
	if d.capture {
		rec = &engine.Recorder{}
		opts = append(opts, engine.WithObserver(rec))
	}

	if d.trace != nil {
		opts = append(opts, engine.WithObserver(engine.NewTraceWriter(d.trace, d.style)))
	}

	m := engine.New(d.cfg, opts...)
	if err := m.Reset(input); err != nil {
		out.Err = err
		out.Result = engine.Result{State: m.State(), Tape: m.Tape()}
	} else {
		out.Result, out.Err = m.Run()
	}
	if rec != nil {
		out.Trace = rec.Snapshots
	}
	if out.Err != nil && !engine.IsRunError(out.Err) {
		// Only observers fail this way.
		if err := ctx.Err(); err != nil && errors.Is(out.Err, err) {
			d.logger.Debug("run cancelled", "run", out.RunID, "line", line, "steps", out.Result.Steps)
			return out, err
		}
		return out, fmt.Errorf("write trace: %w", out.Err)
	}

	d.logOutcome(out)
	if d.metrics != nil {
		d.metrics.ObserveRun(out.Accepted(), out.Result.Steps, m.TapeLen(), string(engine.CodeOf(out.Err)))
	}
	if d.store != nil {
		if err := d.persist(ctx, out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Process runs every line of r and calls emit with each outcome in order.
//
// Trailing "\r" is stripped so CRLF input behaves like LF input. Processing
// stops at the first infrastructure error or emit error; run errors do not
// stop it.
func (d *Driver) Process(ctx context.Context, r io.Reader, emit func(Outcome) error) (Summary, error) {
	sum := Summary{LastAccepted: true}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		input := strings.TrimSuffix(scanner.Text(), "\r")

		out, err := d.RunLine(ctx, line, input)
		if err != nil {
			return sum, err
		}

		sum.Lines++
		switch {
		case out.Err != nil:
			sum.Failed++
		case out.Result.Accepted:
			sum.Accepted++
		default:
			sum.Rejected++
		}
		sum.LastAccepted = out.Accepted()

		if emit != nil {
			if err := emit(out); err != nil {
				return sum, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("read input line %d: %w", line+1, err)
	}

	d.logger.Debug("input processed",
		"lines", sum.Lines,
		"accepted", sum.Accepted,
		"rejected", sum.Rejected,
		"failed", sum.Failed,
	)
	return sum, nil
}

func (d *Driver) register(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	d.registerOnce.Do(func() {
		hash, err := d.store.WriteMachine(ctx, d.cfg.Description())
		if err != nil {
			d.registerErr = fmt.Errorf("register machine: %w", err)
			return
		}
		if hash != d.cfg.Hash() {
			d.registerErr = fmt.Errorf("register machine: stored hash %s does not match %s", hash, d.cfg.Hash())
			return
		}
		d.logger.Debug("machine registered", "hash", hash)
	})
	return d.registerErr
}

func (d *Driver) persist(ctx context.Context, out Outcome) error {
	run, err := d.record(out)
	if err != nil {
		return err
	}
	if err := d.store.WriteRun(ctx, run, out.Trace); err != nil {
		return fmt.Errorf("persist run %s: %w", out.RunID, err)
	}
	return nil
}

// record converts an outcome to its stored form.
func (d *Driver) record(out Outcome) (store.Run, error) {
	hash, err := ir.OutcomeHash(d.cfg.Hash(), out.Input, out.Result.Tape, out.Result.State, out.Accepted(), out.Result.Steps)
	if err != nil {
		return store.Run{}, err
	}
	run := store.Run{
		ID:          out.RunID,
		MachineHash: d.cfg.Hash(),
		Seq:         out.Seq,
		Line:        out.Line,
		Input:       out.Input,
		Output:      out.Result.Tape,
		FinalState:  out.Result.State,
		Accepted:    out.Accepted(),
		Steps:       out.Result.Steps,
		MaxSteps:    d.maxSteps,
		MaxTape:     d.maxTape,
		OutcomeHash: hash,
	}
	if out.Err != nil {
		run.ErrorCode = string(engine.CodeOf(out.Err))
		run.ErrorMessage = out.Err.Error()
	}
	return run, nil
}

// lockedWriter serializes writes from concurrent runs.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func (d *Driver) logOutcome(out Outcome) {
	if out.Err != nil {
		// Run errors are ordinary outcomes reported to the caller.
		level := slog.LevelDebug
		if !engine.IsRunError(out.Err) {
			level = slog.LevelError
		}
		d.logger.Log(context.Background(), level, "run failed",
			"run", out.RunID,
			"line", out.Line,
			"code", engine.CodeOf(out.Err),
			"error", out.Err,
		)
		return
	}
	d.logger.Debug("run halted",
		"run", out.RunID,
		"line", out.Line,
		"state", out.Result.State,
		"accepted", out.Result.Accepted,
		"steps", out.Result.Steps,
	)
}
