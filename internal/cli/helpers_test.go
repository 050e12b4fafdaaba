package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// unarySuccessor walks right over 1s and accepts in state 1 at the first blank.
const unarySuccessor = `1
_
1
0
0 1 0 1 R
0 _ 1 _ L
`

// unaryRejecter is unarySuccessor without accepting states.
const unaryRejecter = `1
_

0
0 1 0 1 R
0 _ 1 _ L
`

// duplicateRules declares (0, 1) twice; the second rule moves left.
const duplicateRules = `1
_
1
0
0 1 0 1 R
0 1 1 1 L
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeMachine(t *testing.T, content string) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "machine.tm", content)
}

// executeCommand runs the root command in-process with stdin and returns
// what it wrote to stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
