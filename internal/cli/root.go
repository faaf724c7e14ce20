package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
// Config and Logger are filled in before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LogLevel   string

	Config *Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the salesdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "salesdb",
		Short: "salesdb - typed tables and sales queries",
		Long: `Load retail sales data into typed in-memory tables and run the fixed
set of sales queries over them.

Data can come from a YAML dataset, a directory of table files, or the
latest snapshot in a SQLite archive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", DefaultFormat, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./salesdb.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", DefaultLogLevel, "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewArchiveCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load merges configuration and builds the logger.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(o.ConfigFile, cmd.Flags())
	if err != nil {
		return o.formatter(cmd).fail(ExitCommandError, ErrCodeGeneric, "failed to load config", err)
	}
	o.Config = cfg
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	o.LogLevel = cfg.LogLevel
	o.Logger = newLogger(cfg, cmd.ErrOrStderr())

	if cfg.File != "" {
		o.Logger.Debug("config loaded", "file", cfg.File)
	}
	return nil
}

// config returns the loaded config, or defaults when a subcommand runs
// without the root (as in tests).
func (o *RootOptions) config() *Config {
	if o.Config != nil {
		return o.Config
	}
	return &Config{
		Format:    o.Format,
		Verbose:   o.Verbose,
		LogLevel:  DefaultLogLevel,
		ExportDir: DefaultExportDir,
	}
}

// logger returns the configured logger, or one that discards.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// Execute runs the root command with the given arguments and returns the
// process exit code. Errors are printed to stderr unless the command
// already reported them.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	// ExitErrors were already reported by the command
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// Usage errors from cobra (unknown command, wrong arg count)
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitCommandError
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
