package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/fetchqb/internal/config"
	"github.com/roach88/fetchqb/internal/fetchxml"
	"github.com/roach88/fetchqb/internal/logging"
)

// RootOptions holds global flags and the resolved configuration.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config is resolved in PersistentPreRunE. Commands constructed on
	// their own (as in tests) fall back to config.Default.
	Config *config.Config

	logger *zerolog.Logger
	viper  *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fetchqb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: config.New()}

	cmd := &cobra.Command{
		Use:   "fetchqb",
		Short: "fetchqb - FetchXML query builder tooling",
		Long: `Convert between FetchXML documents and editable rule trees.

fetchqb parses FetchXML into the rule tree a query-builder editor works
with, serializes edited trees back to canonical FetchXML, and keeps a
small local store of saved queries and entity metadata.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default ./fetchqb.yaml if present)")
	pf.String(config.KeyLogLevel, "info", "log level (trace|debug|info|warn|error)")
	pf.String(config.KeyLogFormat, logging.FormatPretty, "log format (json|pretty)")
	pf.String(config.KeyEntityPlaceholder, fetchxml.DefaultEntityName, "entity name used when a document names none")
	pf.String(config.KeyCatalog, "", "entity metadata catalog (.yaml, .yml or .cue)")
	pf.String(config.KeyDB, "fetchqb.db", "SQLite database for saved queries and cached fields")
	pf.Bool(config.KeyPreserveWildcards, false, "keep % wildcards of like conditions when parsing")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewFmtCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewOpsCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve loads configuration from file, environment and flags and builds
// the logger. Logs go to stderr so they never mix with command output.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if err := config.BindFlags(o.viper, cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "binding flags", err)
	}
	cfg, err := config.Load(o.viper, o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	if o.Verbose && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.Logging(cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring logger", err)
	}
	o.Config = cfg
	o.logger = &logger
	return nil
}

// settings returns the resolved configuration or the defaults.
func (o *RootOptions) settings() config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return *o.Config
}

// log returns the command logger, discarding when none was configured.
func (o *RootOptions) log() zerolog.Logger {
	if o.logger == nil {
		return zerolog.Nop()
	}
	return *o.logger
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// decoder returns a FetchXML decoder following the wildcard setting.
func (o *RootOptions) decoder() *fetchxml.Decoder {
	return &fetchxml.Decoder{PreserveWildcards: o.settings().PreserveWildcards}
}

// encoder returns a FetchXML encoder using the configured placeholder.
func (o *RootOptions) encoder() *fetchxml.Encoder {
	enc := fetchxml.NewEncoder()
	if p := o.settings().EntityPlaceholder; p != "" {
		enc.EntityPlaceholder = p
	}
	return enc
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
