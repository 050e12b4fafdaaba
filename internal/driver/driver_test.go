package driver

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/metrics"
)

func collect(t *testing.T, d *Driver, input string) ([]Outcome, Summary) {
	t.Helper()
	var outs []Outcome
	sum, err := d.Process(context.Background(), strings.NewReader(input), func(o Outcome) error {
		outs = append(outs, o)
		return nil
	})
	require.NoError(t, err)
	return outs, sum
}

func TestRunLine_Accepts(t *testing.T) {
	d := newTestDriver(t, unarySuccessor)

	out, err := d.RunLine(context.Background(), 1, "111")
	require.NoError(t, err)
	require.NoError(t, out.Err)

	assert.Equal(t, "run-1", out.RunID)
	assert.Equal(t, int64(1), out.Seq)
	assert.Equal(t, "111_", out.Result.Tape)
	assert.True(t, out.Accepted())
	assert.Equal(t, uint64(5), out.Result.Steps)
}

func TestProcess_ErrorsDoNotStopLaterLines(t *testing.T) {
	d := newTestDriver(t, unarySuccessor)

	outs, sum := collect(t, d, "111\n1a1\n\n")
	require.Len(t, outs, 3)

	assert.Equal(t, "111_", outs[0].Result.Tape)
	assert.True(t, engine.IsInvalidTapeSymbol(outs[1].Err))
	assert.False(t, outs[1].Accepted())
	assert.Equal(t, uint64(0), outs[1].Result.Steps)
	assert.Equal(t, "__", outs[2].Result.Tape)
	assert.True(t, outs[2].Accepted())

	assert.Equal(t, Summary{Lines: 3, Accepted: 2, Failed: 1, LastAccepted: true}, sum)
	for i, o := range outs {
		assert.Equal(t, i+1, o.Line)
		assert.Equal(t, int64(i+1), o.Seq)
	}
}

func TestProcess_LastLineDecides(t *testing.T) {
	d := newTestDriver(t, unarySuccessor)

	_, sum := collect(t, d, "111\n2\n")
	assert.False(t, sum.LastAccepted)
	assert.Equal(t, 1, sum.Accepted)
	assert.Equal(t, 1, sum.Failed)
}

func TestProcess_NoInput(t *testing.T) {
	d := newTestDriver(t, unarySuccessor)

	outs, sum := collect(t, d, "")
	assert.Empty(t, outs)
	assert.Equal(t, Summary{LastAccepted: true}, sum)
}

func TestProcess_StripsCarriageReturn(t *testing.T) {
	d := newTestDriver(t, unarySuccessor)

	outs, _ := collect(t, d, "11\r\n1\r\n")
	require.Len(t, outs, 2)
	assert.Equal(t, "11", outs[0].Input)
	assert.Equal(t, "11_", outs[0].Result.Tape)
	assert.NoError(t, outs[1].Err)
}

func TestProcess_EmitErrorStops(t *testing.T) {
	d := newTestDriver(t, unarySuccessor)
	stop := errors.New("stop")

	calls := 0
	sum, err := d.Process(context.Background(), strings.NewReader("1\n1\n1\n"), func(Outcome) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, sum.Lines)
}

func TestProcess_ContextCancelled(t *testing.T) {
	d := newTestDriver(t, unarySuccessor)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Process(ctx, strings.NewReader("1\n"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunLine_Trace(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDriver(t, unarySuccessor, WithTrace(&buf, nil))

	out, err := d.RunLine(context.Background(), 1, "1")
	require.NoError(t, err)
	require.NoError(t, out.Err)

	assert.Equal(t, "(0)1\n1(0)_\n(1)1_\n", buf.String())
	assert.Equal(t, "1_", out.Result.Tape)
}

func TestRunLine_TraceStyle(t *testing.T) {
	var buf bytes.Buffer
	style := func(s string) string { return "[" + s + "]" }
	d := newTestDriver(t, unarySuccessor, WithTrace(&buf, style))

	_, err := d.RunLine(context.Background(), 1, "1")
	require.NoError(t, err)
	assert.Equal(t, "[(0)1]\n1[(0)_]\n[(1)1]_\n", buf.String())
}

func TestRunLine_Capture(t *testing.T) {
	d := newTestDriver(t, unarySuccessor, WithCapture())

	out, err := d.RunLine(context.Background(), 1, "1")
	require.NoError(t, err)
	assert.Equal(t, []engine.Snapshot{
		{Step: 0, State: 0, Head: 0, Tape: "1"},
		{Step: 1, State: 0, Head: 1, Tape: "1_"},
		{Step: 2, State: 1, Head: 0, Tape: "1_"},
	}, out.Trace)
}

func TestRunLine_MaxSteps(t *testing.T) {
	d := newTestDriver(t, runRight, WithMaxSteps(3))

	out, err := d.RunLine(context.Background(), 1, "1")
	require.NoError(t, err)
	assert.True(t, engine.IsStepsExceededError(out.Err))
	assert.Equal(t, uint64(3), out.Result.Steps)
	assert.False(t, out.Accepted())
}

func TestRunLine_MaxTape(t *testing.T) {
	d := newTestDriver(t, runRight, WithMaxTape(3))

	out, err := d.RunLine(context.Background(), 1, "1")
	require.NoError(t, err)
	assert.True(t, engine.IsTapeOverflow(out.Err))
	assert.Equal(t, "1__", out.Result.Tape)
}

func TestRunLine_Metrics(t *testing.T) {
	c := metrics.New()
	d := newTestDriver(t, unarySuccessor, WithMetrics(c))

	_, sum := collect(t, d, "1\n1x\n")
	require.Equal(t, 2, sum.Lines)

	count, err := testutil.GatherAndCount(c.Registry(), "turing_runs_total", "turing_run_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDriver_ConcurrentRunLine(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDriver(t, unarySuccessor, WithTrace(&buf, nil))

	const n = 16
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			out, err := d.RunLine(context.Background(), 1, "1")
			if err == nil && out.Result.Tape != "1_" {
				err = errors.New("unexpected tape " + out.Result.Tape)
			}
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3*n)
	counts := map[string]int{}
	for _, l := range lines {
		counts[l]++
	}
	assert.Equal(t, map[string]int{"(0)1": n, "1(0)_": n, "(1)1_": n}, counts)
}

func TestRunLine_CancelStopsNonHaltingRun(t *testing.T) {
	d := newTestDriver(t, runRight)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(20*time.Millisecond, cancel)
	defer timer.Stop()

	done := make(chan error, 1)
	go func() {
		_, err := d.RunLine(ctx, 1, "1")
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestProcess_CancelStopsNonHaltingRun(t *testing.T) {
	d := newTestDriver(t, runRight)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var emitted int
	_, err := d.Process(ctx, strings.NewReader("1\n1\n"), func(Outcome) error {
		emitted++
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, emitted)
}

// lineCounter cancels its context once limit lines have been written.
type lineCounter struct {
	lines  int
	limit  int
	cancel context.CancelFunc
}

func (lc *lineCounter) Write(p []byte) (int, error) {
	lc.lines += bytes.Count(p, []byte("\n"))
	if lc.lines >= lc.limit {
		lc.cancel()
	}
	return len(p), nil
}

func TestRunLine_TraceStreamsDuringRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &lineCounter{limit: 5, cancel: cancel}
	d := newTestDriver(t, runRight, WithTrace(w, nil))

	out, err := d.RunLine(ctx, 1, "1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, w.lines, "trace lines are written before the run ends")
	assert.Equal(t, uint64(5), out.Result.Steps)
}

func TestRunLine_TraceWriteError(t *testing.T) {
	d := newTestDriver(t, unarySuccessor, WithTrace(errWriter{}, nil))

	_, err := d.RunLine(context.Background(), 1, "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write trace")
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }
