package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fetchqb/internal/rule"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Entity string
	Fields []string
	Output string
}

// BuildResult is the serialized document.
type BuildResult struct {
	Entity string   `json:"entity"`
	Fields []string `json:"fields"`
	XML    string   `json:"xml"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <rule-file|->",
		Short: "Serialize a rule tree to FetchXML",
		Long: `Serialize a rule tree to FetchXML.

The rule file uses the query-builder shape, as JSON or YAML (chosen by
extension; stdin is read as JSON):

  {"condition": "and", "rules": [
    {"field": "revenue", "operator": "greaterthan", "value": 1000}
  ]}

Examples:
  fetchqb build rule.json --entity account --field name
  fetchqb build rule.yaml --entity contact -o query.xml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity name (default: the configured placeholder)")
	cmd.Flags().StringSliceVar(&opts.Fields, "field", nil, "field to project, repeatable")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to this file")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	text, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading %s", path), err)
	}

	node, err := decodeRule(path, []byte(text))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("decoding rule %s", path), err)
	}
	root, ok := node.(*rule.Group)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, "rule root must be a group", nil)
	}

	fields := make([]rule.Field, 0, len(opts.Fields))
	for _, name := range opts.Fields {
		if name = strings.TrimSpace(name); name != "" {
			fields = append(fields, rule.NewField(name))
		}
	}

	enc := opts.encoder()
	xml, err := enc.Encode(root, opts.Entity, fields)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeEncodeFailed, "encoding rule tree", err)
	}

	if opts.Output != "" {
		if err := writeFile(opts.Output, xml); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s", opts.Output), err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	entity := opts.Entity
	if entity == "" {
		entity = enc.EntityPlaceholder
	}
	result := BuildResult{
		Entity: entity,
		Fields: rule.FieldNames(fields),
		XML:    xml,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(xml)
}

// decodeRule reads a rule tree as YAML for .yaml/.yml paths and as JSON
// otherwise.
func decodeRule(path string, data []byte) (rule.Node, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return rule.DecodeYAML(data)
	default:
		return rule.UnmarshalNode(data)
	}
}
