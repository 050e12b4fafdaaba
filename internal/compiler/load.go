package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/turing/internal/ir"
)

// Format identifies a description syntax.
type Format string

const (
	FormatText Format = "text"
	FormatCUE  Format = "cue"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) Format {
	if filepath.Ext(path) == ".cue" {
		return FormatCUE
	}
	return FormatText
}

// LoadFile reads and parses the description at path.
func LoadFile(path string) (*ir.Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read description: %w", err)
	}
	return LoadBytes(data, path, DetectFormat(path))
}

// LoadBytes parses data in the given format. name is used in CUE error
// positions.
func LoadBytes(data []byte, name string, format Format) (*ir.Description, error) {
	switch format {
	case FormatCUE:
		return ParseCUE(data, name)
	case FormatText:
		return ParseString(string(data))
	default:
		return nil, fmt.Errorf("unknown description format %q", format)
	}
}
