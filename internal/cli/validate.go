package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/turing/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	AllowOverwrite bool
}

// ValidationResult describes a description that loaded successfully.
type ValidationResult struct {
	Valid     bool       `json:"valid"`
	Hash      string     `json:"hash"`
	Alphabet  []string   `json:"alphabet"`
	Blank     string     `json:"blank"`
	Accepting []ir.State `json:"accepting"`
	Initial   ir.State   `json:"initial"`
	Rules     int        `json:"rules"`

	// States lists every state the rules mention, in first-seen order.
	States []ir.State `json:"states"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <description>",
		Short: "Check a machine description without running it",
		Long: `Parse a machine description and build its transition table.

Reports the first problem found: malformed lines, rules using symbols
outside the alphabet, or two rules for the same state and symbol.
On success prints the machine hash and a summary of the definition.

Exit codes:
  0 - Description is valid
  2 - Description is invalid or unreadable

Examples:
  tm validate unary.tm
  tm validate machine.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.AllowOverwrite, "allow-overwrite", false, "let a later duplicate rule replace an earlier one")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(path, opts.AllowOverwrite)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %s", path)

	desc := cfg.Description()
	result := ValidationResult{
		Valid:     true,
		Hash:      cfg.Hash(),
		Alphabet:  symbolStrings(desc.SortedAlphabet()),
		Blank:     desc.Blank.String(),
		Accepting: desc.SortedAccepting(),
		Initial:   desc.Initial,
		Rules:     cfg.Table().Len(),
		States:    cfg.Table().States(),
	}
	if result.States == nil {
		result.States = []ir.State{}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, successMsg("%s is valid", path))
	fmt.Fprint(w, keyValues("  ",
		kv("hash", result.Hash),
		kv("alphabet", strings.Join(result.Alphabet, " ")),
		kv("blank", result.Blank),
		kv("initial", fmt.Sprint(result.Initial)),
		kv("accepting", stateList(result.Accepting)),
		kv("states", stateList(result.States)),
		kv("rules", fmt.Sprint(result.Rules)),
	))
	return nil
}

func symbolStrings(syms []ir.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.String()
	}
	return out
}

func stateList(states []ir.State) string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = fmt.Sprint(s)
	}
	return strings.Join(out, " ")
}
