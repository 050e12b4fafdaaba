package ir

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// descriptionDoc is the JSON shape of a Description.
// Symbols are one-character strings so stored descriptions stay readable.
type descriptionDoc struct {
	Alphabet  []string  `json:"alphabet"`
	Blank     string    `json:"blank"`
	Accepting []uint64  `json:"accepting"`
	Initial   uint64    `json:"initial"`
	Rules     []ruleDoc `json:"rules"`
}

type ruleDoc struct {
	State uint64 `json:"state"`
	Read  string `json:"read"`
	Next  uint64 `json:"next"`
	Write string `json:"write"`
	Move  string `json:"move"`
}

// CanonicalMap converts the description to the generic form accepted by
// MarshalCanonical. Sets are sorted; rule order is preserved.
func (d Description) CanonicalMap() map[string]any {
	alphabet := make([]any, 0, len(d.Alphabet))
	for _, s := range d.SortedAlphabet() {
		alphabet = append(alphabet, s)
	}
	accepting := make([]any, 0, len(d.Accepting))
	for _, s := range d.SortedAccepting() {
		accepting = append(accepting, s)
	}
	rules := make([]any, 0, len(d.Rules))
	for _, r := range d.Rules {
		rules = append(rules, map[string]any{
			"state": r.State,
			"read":  r.Read,
			"next":  r.Next,
			"write": r.Write,
			"move":  r.Move.String(),
		})
	}
	return map[string]any{
		"alphabet":  alphabet,
		"blank":     d.Blank,
		"accepting": accepting,
		"initial":   d.Initial,
		"rules":     rules,
	}
}

// MarshalDescription encodes d as canonical JSON.
func MarshalDescription(d Description) ([]byte, error) {
	data, err := MarshalCanonical(d.CanonicalMap())
	if err != nil {
		return nil, fmt.Errorf("marshal description: %w", err)
	}
	return data, nil
}

// UnmarshalDescription decodes JSON produced by MarshalDescription.
// Source line numbers are not preserved.
func UnmarshalDescription(data []byte) (Description, error) {
	var doc descriptionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Description{}, fmt.Errorf("unmarshal description: %w", err)
	}

	var d Description
	var err error
	for i, s := range doc.Alphabet {
		sym, symErr := decodeSymbol(s)
		if symErr != nil {
			return Description{}, fmt.Errorf("alphabet[%d]: %w", i, symErr)
		}
		d.Alphabet = append(d.Alphabet, sym)
	}
	if d.Blank, err = decodeSymbol(doc.Blank); err != nil {
		return Description{}, fmt.Errorf("blank: %w", err)
	}
	for _, s := range doc.Accepting {
		d.Accepting = append(d.Accepting, State(s))
	}
	d.Initial = State(doc.Initial)

	for i, rd := range doc.Rules {
		r := Rule{State: State(rd.State), Next: State(rd.Next)}
		if r.Read, err = decodeSymbol(rd.Read); err != nil {
			return Description{}, fmt.Errorf("rules[%d].read: %w", i, err)
		}
		if r.Write, err = decodeSymbol(rd.Write); err != nil {
			return Description{}, fmt.Errorf("rules[%d].write: %w", i, err)
		}
		if r.Move, err = ParseDirection(rd.Move); err != nil {
			return Description{}, fmt.Errorf("rules[%d].move: %w", i, err)
		}
		d.Rules = append(d.Rules, r)
	}
	return d, nil
}

func decodeSymbol(s string) (Symbol, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("symbol %q must be exactly one character", s)
	}
	return Symbol(r), nil
}
