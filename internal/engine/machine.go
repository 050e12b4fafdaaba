package engine

import (
	"math"
	"unicode/utf8"

	"github.com/roach88/turing/internal/ir"
)

// DefaultMaxTape is the default limit on the materialized window length.
const DefaultMaxTape = math.MaxInt

// Result is the outcome of a run.
type Result struct {
	State    ir.State `json:"state"`
	Accepted bool     `json:"accepted"`
	Tape     string   `json:"tape"`
	Steps    uint64   `json:"steps"`
}

// Machine is one mutable machine instance: tape, head and current state.
//
// A Machine is driven from a single goroutine. Its Config may be shared.
//
// INVARIANTS:
//   - 0 <= head < tape.Len() whenever the machine is not halted
//   - every cell holds a symbol accepted by Config.ValidSymbol
//   - a failed step leaves the configuration untouched
type Machine struct {
	cfg   *Config
	tape  *Tape
	head  int
	state ir.State
	steps uint64

	halted bool

	// blankInput marks a window holding only the blank placed for an
	// empty input.
	blankInput bool

	maxTape   int
	maxSteps  uint64
	observers []Observer
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxTape caps the materialized window at n cells.
// Growing past the cap fails the run with TAPE_OVERFLOW.
//
// Default: DefaultMaxTape (math.MaxInt), the largest index range an int
// head can address.
func WithMaxTape(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxTape = n
		}
	}
}

// WithMaxSteps stops a run with StepsExceededError once n transitions have
// been applied and another rule matches.
//
// Default: 0 (unlimited). A machine that never halts then runs forever.
func WithMaxSteps(n uint64) Option {
	return func(m *Machine) {
		m.maxSteps = n
	}
}

// WithObserver registers an observer called before every step attempt.
// Observers are called in registration order and survive Reset.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// New creates a Machine for cfg with an empty input loaded.
func New(cfg *Config, opts ...Option) *Machine {
	m := &Machine{
		cfg:     cfg,
		tape:    NewTape(cfg.Blank(), nil),
		maxTape: DefaultMaxTape,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.reinit(nil)
	return m
}

// Reset reloads the machine with input as the initial window, head at 0
// and the initial state.
//
// Every character must be in the alphabet or be the blank symbol; otherwise
// Reset returns INVALID_TAPE_SYMBOL and the machine is left halted on an
// empty input. An empty input materializes a single blank cell; until a
// transition is applied the tape still reads as "".
func (m *Machine) Reset(input string) error {
	symbols := make([]ir.Symbol, 0, utf8.RuneCountInString(input))
	for pos, r := range []rune(input) {
		sym := ir.Symbol(r)
		if !m.cfg.ValidSymbol(sym) {
			m.reinit(nil)
			m.halted = true
			return newInvalidTapeSymbolError(pos, sym)
		}
		symbols = append(symbols, sym)
	}
	if len(symbols) > m.maxTape {
		m.reinit(nil)
		m.halted = true
		return newTapeOverflowError(m.cfg.Initial(), 0, m.maxTape)
	}
	m.reinit(symbols)
	return nil
}

func (m *Machine) reinit(symbols []ir.Symbol) {
	m.blankInput = len(symbols) == 0
	if m.blankInput {
		symbols = []ir.Symbol{m.cfg.Blank()}
	}
	m.tape.load(symbols)
	m.head = 0
	m.state = m.cfg.Initial()
	m.steps = 0
	m.halted = false
}

// Step applies at most one transition.
//
// It returns true if a rule matched and was applied, false if the machine
// halted. On error nothing is applied and the machine stays where it was.
func (m *Machine) Step() (bool, error) {
	if m.halted {
		return false, nil
	}

	sym := m.tape.Read(m.head)
	action, ok := m.cfg.table.Lookup(m.state, sym)
	if !ok {
		m.halted = true
		return false, nil
	}

	if err := checkQuota(m.steps, m.maxSteps); err != nil {
		return false, err
	}

	last := m.tape.Len() - 1
	growRight := action.Move == ir.Right && m.head == last
	growLeft := action.Move == ir.Left && m.head == 0
	if (growRight || growLeft) && m.tape.Len() >= m.maxTape {
		return false, newTapeOverflowError(m.state, sym, m.maxTape)
	}

	m.tape.Write(m.head, action.Write)
	switch action.Move {
	case ir.Right:
		if growRight {
			m.tape.GrowRight()
		}
		m.head++
	case ir.Left:
		if growLeft {
			m.tape.GrowLeft()
		} else {
			m.head--
		}
	}
	m.state = action.Next
	m.steps++

	return true, nil
}

// Run steps the machine until it halts and reports the outcome.
//
// On error the returned Result describes the configuration reached so far
// and Accepted is false.
func (m *Machine) Run() (Result, error) {
	for {
		if err := m.notify(); err != nil {
			return m.partial(), err
		}
		applied, err := m.Step()
		if err != nil {
			return m.partial(), err
		}
		if !applied {
			return m.result(), nil
		}
	}
}

func (m *Machine) notify() error {
	if len(m.observers) == 0 {
		return nil
	}
	c := m.Configuration()
	for _, o := range m.observers {
		if err := o.Observe(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) result() Result {
	return Result{
		State:    m.state,
		Accepted: m.cfg.Accepts(m.state),
		Tape:     m.tapeText(),
		Steps:    m.steps,
	}
}

func (m *Machine) partial() Result {
	r := m.result()
	r.Accepted = false
	return r
}

// Configuration returns the current configuration. Cells aliases the tape.
func (m *Machine) Configuration() Configuration {
	return Configuration{
		Step:  m.steps,
		State: m.state,
		Head:  m.head,
		Cells: m.tape.view(),
	}
}

// Config returns the shared machine definition.
func (m *Machine) Config() *Config { return m.cfg }

// State returns the current state.
func (m *Machine) State() ir.State { return m.state }

// Head returns the head index into the window.
func (m *Machine) Head() int { return m.head }

// Steps returns the number of transitions applied since the last Reset.
func (m *Machine) Steps() uint64 { return m.steps }

// Halted reports whether the last step attempt found no rule.
func (m *Machine) Halted() bool { return m.halted }

// Tape returns the window as text. An empty input that no transition has
// touched reads as "".
func (m *Machine) Tape() string { return m.tapeText() }

func (m *Machine) tapeText() string {
	if m.blankInput && m.steps == 0 {
		return ""
	}
	return m.tape.String()
}

// TapeLen returns the window length.
func (m *Machine) TapeLen() int { return m.tape.Len() }
