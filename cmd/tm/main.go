// Command tm runs deterministic single-tape Turing machines.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/turing/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsSilent(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
