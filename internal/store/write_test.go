package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/ir"
)

func TestWriteMachine_Roundtrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	d := testDescription()

	hash, err := s.WriteMachine(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, ir.MustDescriptionHash(d), hash)

	m, err := s.ReadMachine(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, hash, m.Hash)
	assert.Equal(t, ir.IRVersion, m.IRVersion)
	assert.Equal(t, ir.EngineVersion, m.EngineVersion)
	assert.Equal(t, d.Rules[1].Write, m.Description.Rules[1].Write)
	assert.Equal(t, hash, ir.MustDescriptionHash(m.Description))
}

func TestWriteMachine_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	h1, err := s.WriteMachine(ctx, testDescription())
	require.NoError(t, err)
	h2, err := s.WriteMachine(ctx, testDescription())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM machines").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestReadMachine_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadMachine(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWriteRun_WithSteps(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	hash, err := s.WriteMachine(ctx, testDescription())
	require.NoError(t, err)

	steps := []engine.Snapshot{
		{Step: 0, State: 0, Head: 0, Tape: "1"},
		{Step: 1, State: 0, Head: 1, Tape: "1_"},
		{Step: 2, State: 1, Head: 0, Tape: "11"},
	}
	run := createTestRun("run-1", hash, 1)
	require.NoError(t, s.WriteRun(ctx, run, steps))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)

	gotSteps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, steps, gotSteps)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	hash, err := s.WriteMachine(ctx, testDescription())
	require.NoError(t, err)

	steps := []engine.Snapshot{{Step: 0, Tape: "1"}}
	run := createTestRun("run-1", hash, 1)
	require.NoError(t, s.WriteRun(ctx, run, steps))
	require.NoError(t, s.WriteRun(ctx, run, steps))

	gotSteps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, gotSteps, 1)
}

func TestWriteRun_UnknownMachine(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteRun(context.Background(), createTestRun("run-1", "no-such-machine", 1), nil)
	assert.Error(t, err)
}

func TestWriteRun_PreservesLargeUnsigned(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	hash, err := s.WriteMachine(ctx, testDescription())
	require.NoError(t, err)

	run := createTestRun("run-big", hash, 1)
	run.FinalState = ir.State(math.MaxUint64)
	run.MaxSteps = math.MaxUint64 - 1
	run.MaxTape = math.MaxInt
	run.Accepted = false
	run.ErrorCode = "TAPE_OVERFLOW"
	run.ErrorMessage = "tape exceeds limit"
	require.NoError(t, s.WriteRun(ctx, run, nil))

	got, err := s.ReadRun(ctx, "run-big")
	require.NoError(t, err)
	assert.Equal(t, run, got)
}
