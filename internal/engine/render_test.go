package engine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/turing/internal/ir"
)

func TestRender(t *testing.T) {
	c := Configuration{State: 12, Head: 2, Cells: []ir.Symbol{'a', 'b', 'c', 'd'}}
	assert.Equal(t, "ab(12)cd", Render(c))
	assert.Equal(t, "ab(12)cd", c.String())
	assert.Equal(t, "abcd", c.Tape())
}

func TestRenderHeadAtEdges(t *testing.T) {
	cells := []ir.Symbol{'x', 'y'}
	assert.Equal(t, "(0)xy", Render(Configuration{Head: 0, Cells: cells}))
	assert.Equal(t, "x(0)y", Render(Configuration{Head: 1, Cells: cells}))
}

func TestRenderStyled(t *testing.T) {
	c := Configuration{State: 1, Head: 1, Cells: []ir.Symbol{'1', '_'}}
	got := RenderStyled(c, func(s string) string { return "[" + s + "]" })
	assert.Equal(t, "1[(1)_]", got)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestTraceWriter(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTraceWriter(&buf, nil)

	err := tw.Observe(Configuration{State: 0, Head: 0, Cells: []ir.Symbol{'1'}})
	assert.NoError(t, err)
	assert.Equal(t, "(0)1\n", buf.String())

	err = NewTraceWriter(failingWriter{}, nil).Observe(Configuration{Cells: []ir.Symbol{'1'}})
	assert.Error(t, err)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{Step: 3, State: 7, Head: 1, Tape: "aé_"}
	assert.Equal(t, "a(7)é_", s.String())
	assert.Equal(t, []ir.Symbol{'a', 'é', '_'}, s.Configuration().Cells)
	assert.Equal(t, uint64(3), s.Configuration().Step)
}
