package compiler

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/turing/internal/ir"
)

// Parse reads a text description.
func Parse(r io.Reader) (*ir.Description, error) {
	p := &textParser{sc: bufio.NewScanner(r)}
	return p.parse()
}

// ParseString is Parse over a string.
func ParseString(s string) (*ir.Description, error) {
	return Parse(strings.NewReader(s))
}

type textParser struct {
	sc   *bufio.Scanner
	line int
}

func (p *textParser) next(field string) (string, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", fmt.Errorf("read description: %w", err)
		}
		return "", &CompileError{
			Field:   field,
			Message: "missing " + field + " line",
			Line:    p.line + 1,
		}
	}
	p.line++
	return p.sc.Text(), nil
}

func (p *textParser) parse() (*ir.Description, error) {
	d := &ir.Description{}

	line, err := p.next("alphabet")
	if err != nil {
		return nil, err
	}
	for _, tok := range strings.Fields(line) {
		sym, err := p.symbol("alphabet", tok)
		if err != nil {
			return nil, err
		}
		d.Alphabet = append(d.Alphabet, sym)
	}

	line, err = p.next("blank")
	if err != nil {
		return nil, err
	}
	if d.Blank, err = single(p, "blank", line, p.symbol); err != nil {
		return nil, err
	}

	line, err = p.next("accepting")
	if err != nil {
		return nil, err
	}
	for _, tok := range strings.Fields(line) {
		s, err := p.state("accepting", tok)
		if err != nil {
			return nil, err
		}
		d.Accepting = append(d.Accepting, s)
	}

	line, err = p.next("initial")
	if err != nil {
		return nil, err
	}
	if d.Initial, err = single(p, "initial", line, p.state); err != nil {
		return nil, err
	}

	for p.sc.Scan() {
		p.line++
		text := strings.TrimSpace(p.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rule, err := p.rule(text)
		if err != nil {
			return nil, err
		}
		d.Rules = append(d.Rules, rule)
	}
	if err := p.sc.Err(); err != nil {
		return nil, fmt.Errorf("read description: %w", err)
	}

	return d, nil
}

// single parses a header line that must hold exactly one token.
func single[T any](p *textParser, field, line string, conv func(string, string) (T, error)) (T, error) {
	var zero T
	fields := strings.Fields(line)
	switch len(fields) {
	case 0:
		return zero, &CompileError{Field: field, Message: "no " + field + " specified", Line: p.line}
	case 1:
		return conv(field, fields[0])
	default:
		return zero, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected a single %s, got %d tokens", field, len(fields)),
			Line:    p.line,
		}
	}
}

func (p *textParser) rule(text string) (ir.Rule, error) {
	fields := strings.Fields(text)
	if len(fields) != 5 {
		return ir.Rule{}, &CompileError{
			Field:   "rule",
			Message: fmt.Sprintf("expected 5 fields <state> <read> <next> <write> <direction>, got %d", len(fields)),
			Line:    p.line,
		}
	}

	r := ir.Rule{Line: p.line}
	var err error
	if r.State, err = p.state("rule state", fields[0]); err != nil {
		return ir.Rule{}, err
	}
	if r.Read, err = p.symbol("rule read symbol", fields[1]); err != nil {
		return ir.Rule{}, err
	}
	if r.Next, err = p.state("rule next state", fields[2]); err != nil {
		return ir.Rule{}, err
	}
	if r.Write, err = p.symbol("rule write symbol", fields[3]); err != nil {
		return ir.Rule{}, err
	}
	if r.Move, err = ir.ParseDirection(fields[4]); err != nil {
		return ir.Rule{}, &CompileError{Field: "rule direction", Message: err.Error(), Line: p.line}
	}
	return r, nil
}

func (p *textParser) symbol(field, tok string) (ir.Symbol, error) {
	r, size := utf8.DecodeRuneInString(tok)
	if r == utf8.RuneError || size != len(tok) {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%q is not a single character", tok),
			Line:    p.line,
		}
	}
	if err := checkNFC(field, ir.Symbol(r), p.line); err != nil {
		return 0, err
	}
	return ir.Symbol(r), nil
}

// checkNFC rejects symbols that NFC normalization rewrites, such as U+2126
// OHM SIGN.
func checkNFC(field string, r ir.Symbol, line int) error {
	if norm.NFC.IsNormalString(r.String()) {
		return nil
	}
	return &CompileError{
		Field:   field,
		Message: fmt.Sprintf("%q (U+%04X) is not in Unicode normalization form C", r.String(), rune(r)),
		Line:    line,
	}
}

func (p *textParser) state(field, tok string) (ir.State, error) {
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("invalid state %q: must be a non-negative integer", tok),
			Line:    p.line,
		}
	}
	return ir.State(n), nil
}
