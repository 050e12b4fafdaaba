package driver

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/compiler"
	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/store"
)

// unarySuccessor walks right over 1s and accepts in state 1 at the first blank.
const unarySuccessor = `1
_
1
0
0 1 0 1 R
0 _ 1 _ L
`

// runRight never halts.
const runRight = `1
_

0
0 1 0 1 R
0 _ 0 _ R
`

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func mustConfig(t *testing.T, src string) *engine.Config {
	t.Helper()
	d, err := compiler.ParseString(src)
	require.NoError(t, err)
	cfg, err := engine.NewConfig(*d)
	require.NoError(t, err)
	return cfg
}

func newTestDriver(t *testing.T, src string, opts ...Option) *Driver {
	t.Helper()
	base := []Option{
		WithLogger(quietLogger),
		WithIDGenerator(NewFixedGenerator("run")),
	}
	return New(mustConfig(t, src), append(base, opts...)...)
}

func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
