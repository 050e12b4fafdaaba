package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a later algorithm change.
const (
	DomainDescription = "turing/description/v1"
	DomainOutcome     = "turing/outcome/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DescriptionHash identifies a machine definition by content.
func DescriptionHash(d Description) (string, error) {
	data, err := MarshalDescription(d)
	if err != nil {
		return "", fmt.Errorf("DescriptionHash: %w", err)
	}
	return hashWithDomain(DomainDescription, data), nil
}

// OutcomeHash identifies the observable result of running one tape on one
// machine. Replays compare outcome hashes to detect nondeterminism.
func OutcomeHash(descriptionHash, input, output string, state State, accepted bool, steps uint64) (string, error) {
	data, err := MarshalCanonical(map[string]any{
		"description": descriptionHash,
		"input":       input,
		"output":      output,
		"state":       state,
		"accepted":    accepted,
		"steps":       steps,
	})
	if err != nil {
		return "", fmt.Errorf("OutcomeHash: %w", err)
	}
	return hashWithDomain(DomainOutcome, data), nil
}

// MustDescriptionHash is like DescriptionHash but panics on error.
// Use only in tests.
func MustDescriptionHash(d Description) string {
	h, err := DescriptionHash(d)
	if err != nil {
		panic(err)
	}
	return h
}
