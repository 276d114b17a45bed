package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// CheckResult reports how a document behaves under a parse/serialize
// round trip.
type CheckResult struct {
	// Canonical is true when the input already equals its serialization.
	Canonical bool `json:"canonical"`

	// Stable is true when serializing the parsed serialization reproduces
	// it exactly.
	Stable bool   `json:"stable"`
	XML    string `json:"xml"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file|->",
		Short: "Verify a document round-trips to a fixed point",
		Long: `Decode a FetchXML document, serialize it, then decode and serialize
the result again. The two serializations must be identical.

Exit codes:
  0 - Round trip is stable
  1 - Second serialization differs from the first
  2 - Command error (unreadable or undecodable input)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	text, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading %s", path), err)
	}

	first, err := canonicalize(opts, text)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDecodeFailed, fmt.Sprintf("decoding %s", path), err)
	}
	second, err := canonicalize(opts, first)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeUnstable, "serialization is not decodable", err)
	}

	result := CheckResult{
		Canonical: strings.TrimSpace(text) == first,
		Stable:    first == second,
		XML:       first,
	}
	if !result.Stable {
		formatter.VerboseLog("First serialization:\n%s\nSecond serialization:\n%s", first, second)
		return formatter.Fail(ExitFailure, ErrCodeUnstable, "round trip is not stable", nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, "✓ Round trip is stable")
	if !result.Canonical {
		fmt.Fprintln(formatter.Writer, "  Input is not in canonical form (run fetchqb fmt)")
	}
	return nil
}
