package compiler

import (
	"fmt"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/turing/internal/ir"
)

// machineSchema constrains CUE descriptions. The definition is closed, so
// unknown fields are rejected.
const machineSchema = `
#State: int & >=0

#Symbol: string & =~"^.$"

#Rule: {
	state: #State
	read:  #Symbol
	next:  #State
	write: #Symbol
	move:  "L" | "R"
}

#Machine: {
	alphabet: [...#Symbol]
	blank:    #Symbol
	accepting: [...#State] | *[]
	initial: #State
	rules: [...#Rule]
}
`

type cueRule struct {
	State int64  `json:"state"`
	Read  string `json:"read"`
	Next  int64  `json:"next"`
	Write string `json:"write"`
	Move  string `json:"move"`
}

// ParseCUE compiles a CUE description. filename is used in error positions.
//
// Example:
//
//	alphabet: ["1"]
//	blank:    "_"
//	accepting: [1]
//	initial: 0
//	rules: [
//		{state: 0, read: "1", next: 0, write: "1", move: "R"},
//		{state: 0, read: "_", next: 1, write: "_", move: "L"},
//	]
func ParseCUE(src []byte, filename string) (*ir.Description, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(machineSchema, cue.Filename("machine.schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile machine schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return compileCUE(schema.LookupPath(cue.ParsePath("#Machine")).Unify(v), v)
}

// compileCUE decodes v. Rule lines are taken from src, the value as written
// by the user, because positions of a unified value may point at the schema.
func compileCUE(v, src cue.Value) (*ir.Description, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	d := &ir.Description{}

	var alphabet []string
	if err := v.LookupPath(cue.ParsePath("alphabet")).Decode(&alphabet); err != nil {
		return nil, formatCUEError(err)
	}
	for _, s := range alphabet {
		sym, err := cueSymbol("alphabet", s, 0)
		if err != nil {
			return nil, err
		}
		d.Alphabet = append(d.Alphabet, sym)
	}

	blank, err := v.LookupPath(cue.ParsePath("blank")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if d.Blank, err = cueSymbol("blank", blank, 0); err != nil {
		return nil, err
	}

	var accepting []int64
	if err := v.LookupPath(cue.ParsePath("accepting")).Decode(&accepting); err != nil {
		return nil, formatCUEError(err)
	}
	for _, s := range accepting {
		d.Accepting = append(d.Accepting, ir.State(s))
	}

	initial, err := v.LookupPath(cue.ParsePath("initial")).Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	d.Initial = ir.State(initial)

	lines := ruleLines(src)

	iter, err := v.LookupPath(cue.ParsePath("rules")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		rv := iter.Value()
		var cr cueRule
		if err := rv.Decode(&cr); err != nil {
			return nil, formatCUEError(err)
		}
		move, err := ir.ParseDirection(cr.Move)
		if err != nil {
			return nil, &CompileError{Field: "rule direction", Message: err.Error(), Line: lines[i]}
		}
		read, err := cueSymbol("rule read symbol", cr.Read, lines[i])
		if err != nil {
			return nil, err
		}
		write, err := cueSymbol("rule write symbol", cr.Write, lines[i])
		if err != nil {
			return nil, err
		}
		d.Rules = append(d.Rules, ir.Rule{
			State: ir.State(cr.State),
			Read:  read,
			Next:  ir.State(cr.Next),
			Write: write,
			Move:  move,
			Line:  lines[i],
		})
	}

	return d, nil
}

// ruleLines maps rule index to source line. Missing positions map to 0.
func ruleLines(src cue.Value) map[int]int {
	lines := make(map[int]int)
	iter, err := src.LookupPath(cue.ParsePath("rules")).List()
	if err != nil {
		return lines
	}
	for i := 0; iter.Next(); i++ {
		if pos := iter.Value().Pos(); pos.IsValid() {
			lines[i] = pos.Line()
		}
	}
	return lines
}

// cueSymbol returns the only rune of s. The schema guarantees len 1.
func cueSymbol(field, s string, line int) (ir.Symbol, error) {
	r, _ := utf8.DecodeRuneInString(s)
	if err := checkNFC(field, ir.Symbol(r), line); err != nil {
		return 0, err
	}
	return ir.Symbol(r), nil
}
