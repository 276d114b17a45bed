package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fetchqb/internal/fetchxml"
	"github.com/roach88/fetchqb/internal/fields"
	"github.com/roach88/fetchqb/internal/rule"
)

// OperatorInfo is an editor operator and the FetchXML token it becomes.
type OperatorInfo struct {
	Key   string `json:"key"`
	Text  string `json:"text"`
	Token string `json:"token"`
}

// OpsResult lists the operators offered for a field type.
type OpsResult struct {
	Type      rule.FieldType `json:"type"`
	Operators []OperatorInfo `json:"operators"`
	Values    []rule.Bool    `json:"values,omitempty"`
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops <type>",
		Short: "Show the operators offered for a field type",
		Long: `Show the operator menu the editor offers for a field type, with the
FetchXML operator each entry serializes to.

The type may be a field type (string, number, date, boolean) or a host
attribute type such as Money or DateTime.

Examples:
  fetchqb ops number
  fetchqb ops Money --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runOps(opts *RootOptions, typeName string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	t := rule.FieldType(typeName)
	if !t.Valid() {
		t = fields.Normalize(typeName)
	}

	result := OpsResult{Type: t, Values: fields.BooleanValues(t)}
	for _, op := range fields.OperatorsFor(t) {
		result.Operators = append(result.Operators, OperatorInfo{
			Key:   op.Key,
			Text:  op.Text,
			Token: fetchxml.Translate(op.Key),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Type: %s\n\n", result.Type)
	for _, op := range result.Operators {
		fmt.Fprintf(formatter.Writer, "  %-20s %-24s -> %s\n", op.Key, op.Text, op.Token)
	}
	if len(result.Values) > 0 {
		fmt.Fprintf(formatter.Writer, "\nValues: %v\n", result.Values)
	}
	return nil
}
