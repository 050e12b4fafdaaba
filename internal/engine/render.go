package engine

import (
	"fmt"
	"io"
	"strings"
)

// HeadStyle decorates the "(state)symbol" segment of a rendered
// configuration, e.g. to highlight it on a terminal. nil leaves it plain.
type HeadStyle func(string) string

// Render formats c as the tape window with "(state)" immediately before the
// symbol under the head: "11(0)1_".
func Render(c Configuration) string {
	return RenderStyled(c, nil)
}

// RenderStyled is Render with the head segment passed through style.
func RenderStyled(c Configuration, style HeadStyle) string {
	var b strings.Builder
	for i, s := range c.Cells {
		if i == c.Head {
			head := fmt.Sprintf("(%d)%c", c.State, rune(s))
			if style != nil {
				head = style(head)
			}
			b.WriteString(head)
			continue
		}
		b.WriteRune(rune(s))
	}
	return b.String()
}

// TraceWriter is an Observer that writes one rendered line per step attempt.
type TraceWriter struct {
	w     io.Writer
	style HeadStyle
}

// NewTraceWriter returns a TraceWriter writing to w.
func NewTraceWriter(w io.Writer, style HeadStyle) *TraceWriter {
	return &TraceWriter{w: w, style: style}
}

// Observe implements Observer.
func (tw *TraceWriter) Observe(c Configuration) error {
	_, err := fmt.Fprintln(tw.w, RenderStyled(c, tw.style))
	return err
}
