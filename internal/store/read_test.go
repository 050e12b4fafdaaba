package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListRuns_Ordering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	hash, err := s.WriteMachine(ctx, testDescription())
	require.NoError(t, err)

	// Insert out of order; "B" sorts before "a" under BINARY collation.
	require.NoError(t, s.WriteRun(ctx, createTestRun("c", hash, 2), nil))
	require.NoError(t, s.WriteRun(ctx, createTestRun("a", hash, 1), nil))
	require.NoError(t, s.WriteRun(ctx, createTestRun("B", hash, 1), nil))

	runs, err := s.ListRuns(ctx, hash)
	require.NoError(t, err)

	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"B", "a", "c"}, ids)
}

func TestListRuns_FiltersByMachine(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	h1, err := s.WriteMachine(ctx, testDescription())
	require.NoError(t, err)

	other := testDescription()
	other.Accepting = []ir.State{0, 1}
	h2, err := s.WriteMachine(ctx, other)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	require.NoError(t, s.WriteRun(ctx, createTestRun("r1", h1, 1), nil))
	require.NoError(t, s.WriteRun(ctx, createTestRun("r2", h2, 2), nil))

	runs, err := s.ListRuns(ctx, h2)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r2", runs[0].ID)

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestReadSteps_Empty(t *testing.T) {
	s := createTestStore(t)

	steps, err := s.ReadSteps(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, steps)
	assert.Empty(t, steps)
}
