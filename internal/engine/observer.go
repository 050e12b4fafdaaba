package engine

import "github.com/roach88/turing/internal/ir"

// Configuration is a machine snapshot passed to observers.
//
// Cells is a view of the live tape window. It is only valid for the
// duration of the Observe call and must not be modified.
type Configuration struct {
	Step  uint64 // transitions applied so far
	State ir.State
	Head  int
	Cells []ir.Symbol
}

// Tape returns the window as text.
func (c Configuration) Tape() string {
	return symbolsToString(c.Cells)
}

// String renders the configuration as "...sym(state)sym...".
func (c Configuration) String() string {
	return Render(c)
}

// Observer is notified before every step attempt.
// Returning an error stops the run with that error.
type Observer interface {
	Observe(Configuration) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Configuration) error

// Observe implements Observer.
func (f ObserverFunc) Observe(c Configuration) error {
	return f(c)
}

// Snapshot is a retained copy of a Configuration.
type Snapshot struct {
	Step  uint64   `json:"step"`
	State ir.State `json:"state"`
	Head  int      `json:"head"`
	Tape  string   `json:"tape"`
}

// Configuration rebuilds the configuration the snapshot was taken from.
func (s Snapshot) Configuration() Configuration {
	runes := []rune(s.Tape)
	cells := make([]ir.Symbol, len(runes))
	for i, r := range runes {
		cells[i] = ir.Symbol(r)
	}
	return Configuration{Step: s.Step, State: s.State, Head: s.Head, Cells: cells}
}

// String renders the snapshot like Configuration.String.
func (s Snapshot) String() string {
	return Render(s.Configuration())
}

// Recorder is an Observer that keeps a copy of every configuration.
type Recorder struct {
	Snapshots []Snapshot
}

// Observe implements Observer.
func (r *Recorder) Observe(c Configuration) error {
	r.Snapshots = append(r.Snapshots, Snapshot{
		Step:  c.Step,
		State: c.State,
		Head:  c.Head,
		Tape:  c.Tape(),
	})
	return nil
}

// Reset discards recorded snapshots.
func (r *Recorder) Reset() {
	r.Snapshots = r.Snapshots[:0]
}
