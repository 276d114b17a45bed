package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fetchqb/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Entity string
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <file|->",
		Short: "Save a FetchXML document under a name",
		Long: `Save a FetchXML document in the database under a name, replacing any
query already saved with that name. The document is stored verbatim.

Examples:
  fetchqb save big-accounts query.xml
  fetchqb save big-accounts - < query.xml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(rootOpts, args[0], args[1], cmd)
		},
	}
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "load <name>",
		Short:         "Print a saved FetchXML document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List saved queries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Entity, "entity", "", "only queries over this entity")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <name>",
		Short:         "Delete a saved query",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

// openStore opens the configured database, reporting failure through
// formatter.
func openStore(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	path := opts.settings().DB
	st, err := store.Open(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("opening %s", path), err)
	}
	formatter.VerboseLog("Using database %s", path)
	return st, nil
}

// storeFailure maps store errors to CLI errors.
func storeFailure(formatter *OutputFormatter, message string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, message, err)
	}
	return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, message, err)
}

func runSave(opts *RootOptions, name, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	text, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("reading %s", path), err)
	}

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.SaveQuery(ctx, name, text); err != nil {
		return storeFailure(formatter, fmt.Sprintf("saving %q", name), err)
	}
	saved, err := st.LoadQuery(ctx, name)
	if err != nil {
		return storeFailure(formatter, fmt.Sprintf("reading back %q", name), err)
	}
	logger := opts.log()
	logger.Debug().Str("name", name).Str("entity", saved.EntityName).Int64("seq", saved.Seq).Msg("query saved")

	if formatter.Format == "json" {
		return formatter.Success(saved)
	}
	entity := saved.EntityName
	if entity == "" {
		entity = "(undecodable)"
	}
	fmt.Fprintf(formatter.Writer, "✓ Saved %q (entity %s)\n", name, entity)
	return nil
}

func runLoad(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.LoadQuery(cmd.Context(), name)
	if err != nil {
		return storeFailure(formatter, fmt.Sprintf("loading %q", name), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(saved)
	}
	return formatter.Success(saved.XML)
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	var queries []store.SavedQuery
	if opts.Entity != "" {
		queries, err = st.ListQueriesFor(cmd.Context(), opts.Entity)
	} else {
		queries, err = st.ListQueries(cmd.Context())
	}
	if err != nil {
		return storeFailure(formatter, "listing queries", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(queries)
	}
	if len(queries) == 0 {
		fmt.Fprintln(formatter.Writer, "No saved queries.")
		return nil
	}
	for _, q := range queries {
		fmt.Fprintf(formatter.Writer, "%s\t%s\n", q.Name, q.EntityName)
	}
	return nil
}

func runDelete(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteQuery(cmd.Context(), name); err != nil {
		return storeFailure(formatter, fmt.Sprintf("deleting %q", name), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"deleted": name})
	}
	fmt.Fprintf(formatter.Writer, "✓ Deleted %q\n", name)
	return nil
}
