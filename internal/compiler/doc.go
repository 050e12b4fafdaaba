// Package compiler loads machine descriptions into ir.Description.
//
// Two formats are supported:
//
// Text (default). Line oriented:
//
//	1 0            alphabet: whitespace-separated single characters
//	_              blank symbol
//	2              accepting states (may be empty)
//	0              initial state
//	0 1 0 1 R      rules: state read next write direction
//
// Lines after the header that are empty or start with '#' are skipped.
//
// CUE (files ending in .cue). The value must satisfy #Machine, see cue.go.
//
// The compiler checks structure only. Symbol membership and duplicate rules
// are checked by engine.NewConfig, which reports the rule's source line.
package compiler
