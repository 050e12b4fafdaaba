// Package ir defines the shared data model for Turing machine descriptions.
//
// A Description is the loader's output: alphabet, blank symbol, accepting
// states, initial state and the ordered list of transition rules. It carries
// no behavior; internal/engine turns it into an immutable Config.
//
// The package also provides RFC 8785 canonical JSON and content hashes so a
// description can be identified independently of the file it was read from.
// Two descriptions that differ only in alphabet or accepting-state order hash
// identically.
package ir
