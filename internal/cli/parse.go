package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fetchqb/internal/fetchxml"
	"github.com/roach88/fetchqb/internal/rule"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Strict bool
}

// ParseResult is the decoded form of a FetchXML document.
type ParseResult struct {
	Entity     string       `json:"entity"`
	Fields     []rule.Field `json:"fields"`
	Rule       *rule.Group  `json:"rule"`
	Conditions int          `json:"conditions"`

	// Recovered is set when the document could not be decoded and the
	// empty query was returned instead.
	Recovered bool `json:"recovered,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse FetchXML into a rule tree",
		Long: `Parse a FetchXML document into the rule tree, field list and entity
name a query-builder editor works with.

Undecodable input yields the empty query unless --strict is set.

Examples:
  fetchqb parse query.xml
  fetchqb parse - --format json < query.xml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on undecodable input instead of returning the empty query")

	return cmd
}

func runParse(opts *ParseOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	text, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading %s", path), err)
	}

	res, decErr := opts.decoder().Decode(text)
	recovered := false
	if decErr != nil {
		if opts.Strict {
			return formatter.Fail(ExitCommandError, ErrCodeDecodeFailed, fmt.Sprintf("decoding %s", path), decErr)
		}
		logger := opts.log()
		logger.Warn().Err(decErr).Str("path", path).Msg("document not decodable, using empty query")
		formatter.VerboseLog("Decode failed (%v); using empty query", decErr)
		res = fetchxml.ZeroResult()
		recovered = true
	}

	result := ParseResult{
		Entity:     res.EntityName,
		Fields:     res.Fields,
		Rule:       res.Rule,
		Conditions: rule.CountConditions(res.Rule),
		Recovered:  recovered,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputParseText(formatter, result)
}

func outputParseText(formatter *OutputFormatter, result ParseResult) error {
	w := formatter.Writer

	entity := result.Entity
	if entity == "" {
		entity = "(none)"
	}
	fmt.Fprintf(w, "Entity: %s\n", entity)
	fmt.Fprintf(w, "Fields: %s\n", strings.Join(rule.FieldNames(result.Fields), ", "))
	fmt.Fprintf(w, "Conditions: %d\n", result.Conditions)
	if result.Recovered {
		fmt.Fprintln(w, "Note: document was not decodable; showing the empty query")
	}

	tree, err := json.MarshalIndent(result.Rule, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", tree)
	return nil
}
