package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	LogFormat string // "text" | "console"

	// TraceIDs generates the trace_id of JSON responses.
	TraceIDs TraceIDGenerator

	// Logger is installed by the root command before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidLogFormats defines the allowed diagnostic log formats.
var ValidLogFormats = []string{"text", "console"}

// NewRootCommand creates the root command for the opql CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{TraceIDs: UUIDv7Generator{}})
}

// NewRootCommandWithOptions creates the root command around caller-owned
// options, letting tests pin the trace ID generator.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	if opts.TraceIDs == nil {
		opts.TraceIDs = UUIDv7Generator{}
	}

	cmd := &cobra.Command{
		Use:   "opql",
		Short: "opql - query operation compiler",
		Long:  "Compile serialized query parse trees into typed Operation trees against a CUE class schema.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !contains(ValidLogFormats, opts.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidLogFormats)
			}
			opts.Logger = NewLogger(cmd.ErrOrStderr(), opts.LogFormat, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "diagnostic log format on stderr (text|console)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// logger returns the installed logger, or a discarding one when a
// subcommand is executed without the root command.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return NewLogger(nil, o.LogFormat, false)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	f := &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
	if o.TraceIDs != nil {
		f.TraceID = o.TraceIDs.Generate()
	}
	return f
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
