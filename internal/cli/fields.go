package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fetchqb/internal/catalog"
	"github.com/roach88/fetchqb/internal/rule"
	"github.com/roach88/fetchqb/internal/store"
)

// FieldsOptions holds flags for the fields command.
type FieldsOptions struct {
	*RootOptions
	Select []string
	Toggle []string
	Cache  bool
}

// FieldInfo is one available field of the selected entity.
type FieldInfo struct {
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Type     rule.FieldType `json:"type"`
	Selected bool           `json:"selected"`
}

// FieldsResult is the field picker state after selection.
type FieldsResult struct {
	Entity    string       `json:"entity"`
	Available []FieldInfo  `json:"available"`
	Selected  []rule.Field `json:"selected"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FieldsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fields [entity]",
		Short: "List entities, or the fields of an entity",
		Long: `Without an argument, list the entities of the catalog. With an entity
name, list its fields and the descriptors that would be handed to an
editing session.

When no --select is given, the first selected-count fields are selected.

Examples:
  fetchqb fields --catalog metadata.yaml
  fetchqb fields account --catalog metadata.cue --select name,revenue
  fetchqb fields account --cache --toggle donotemail`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := ""
			if len(args) == 1 {
				entity = args[0]
			}
			return runFields(opts, entity, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "field names to select")
	cmd.Flags().StringSliceVar(&opts.Toggle, "toggle", nil, "field names to toggle after selection")
	cmd.Flags().BoolVar(&opts.Cache, "cache", false, "serve fields through the database field cache")

	return cmd
}

func runFields(opts *FieldsOptions, entity string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.settings()

	if cfg.Catalog == "" {
		return formatter.Fail(ExitCommandError, ErrCodeCatalogFailed, "no catalog configured (use --catalog)", nil)
	}
	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCatalogFailed, fmt.Sprintf("loading catalog %s", cfg.Catalog), err)
	}

	if entity == "" {
		items := cat.Entities()
		if formatter.Format == "json" {
			return formatter.Success(items)
		}
		for _, item := range items {
			fmt.Fprintf(formatter.Writer, "%s\t%s\n", item.Name, item.Label())
		}
		return nil
	}

	var provider catalog.FieldProvider = cat
	if opts.Cache {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("opening %s", cfg.DB), err)
		}
		defer st.Close()
		provider = &store.CachingProvider{Store: st, Upstream: cat, Logger: opts.log()}
	}

	sel := catalog.NewSelection(provider,
		catalog.WithSelectedCount(cfg.SelectedCount),
		catalog.WithSelectionLogger(opts.log()),
	)
	sel.SetEntityList(cat.Entities())
	if len(opts.Select) > 0 {
		sel.SetSelectedFieldNames(opts.Select)
	}
	if err := sel.SelectEntity(cmd.Context(), entity); err != nil {
		if errors.Is(err, catalog.ErrUnknownEntity) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("entity %q not in catalog", entity), err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeCatalogFailed, fmt.Sprintf("loading fields of %q", entity), err)
	}
	for _, name := range opts.Toggle {
		sel.ToggleField(name)
	}

	result := buildFieldsResult(sel)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Entity: %s\n\n", result.Entity)
	for _, f := range result.Available {
		mark := " "
		if f.Selected {
			mark = "x"
		}
		fmt.Fprintf(formatter.Writer, "[%s] %s\t%s\t%s\n", mark, f.Name, f.Label, f.Type)
	}
	return nil
}

func buildFieldsResult(sel *catalog.Selection) FieldsResult {
	selected := make(map[string]bool)
	for _, name := range sel.SelectedFieldNames() {
		selected[name] = true
	}

	available := sel.AvailableFields()
	result := FieldsResult{
		Entity:    sel.SelectedEntity(),
		Available: make([]FieldInfo, 0, len(available)),
		Selected:  sel.SelectedFields(),
	}
	for _, meta := range available {
		d := meta.Descriptor()
		result.Available = append(result.Available, FieldInfo{
			Name:     d.Name,
			Label:    d.DisplayLabel(),
			Type:     d.Type,
			Selected: selected[d.Name],
		})
	}
	return result
}
