package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Write bool
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <file|->",
		Short: "Rewrite FetchXML in canonical form",
		Long: `Parse a FetchXML document and serialize it back in canonical form:
two-space indentation, projections before the filter, and operators and
values in the form the serializer emits.

Parsing is lossy where FetchXML carries more than the rule tree (sort
orders, link-entities, wildcard placement).

Examples:
  fetchqb fmt query.xml
  fetchqb fmt -w query.xml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "write the result back to the file")

	return cmd
}

func runFmt(opts *FmtOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	text, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading %s", path), err)
	}

	canonical, err := canonicalize(opts.RootOptions, text)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDecodeFailed, fmt.Sprintf("decoding %s", path), err)
	}

	if opts.Write && path != stdinArg {
		if err := writeFile(path, canonical); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s", path), err)
		}
		formatter.VerboseLog("Rewrote %s", path)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"xml": canonical})
	}
	return formatter.Success(canonical)
}

// canonicalize decodes text strictly and re-encodes it with its own fields
// and entity.
func canonicalize(opts *RootOptions, text string) (string, error) {
	res, err := opts.decoder().Decode(text)
	if err != nil {
		return "", err
	}
	return opts.encoder().Encode(res.Rule, res.EntityName, res.Fields)
}

// writeFile writes content with a trailing newline.
func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content+"\n"), 0o644)
}
