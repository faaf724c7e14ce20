package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/salesdb/internal/dataset"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                      `json:"valid"`
	Tables map[string]int            `json:"tables,omitempty"`
	Errors []dataset.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <dataset.yaml>",
		Short: "Validate a dataset file",
		Long: `Validate a YAML dataset against the record schema.

Checks field names and types, non-negative prices, positive quantities,
non-empty categories and duplicate ids within each table. References
between tables are not checked.

Exit codes:
  0 - Dataset is valid
  1 - Dataset is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeSource, "dataset not found", err)
	}

	formatter.VerboseLog("Validating %s", path)
	ds, err := dataset.LoadFile(path)
	if err != nil {
		var verrs dataset.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		return formatter.fail(ExitFailure, ErrCodeValidation, "invalid dataset", err)
	}

	result := ValidationResult{
		Valid: true,
		Tables: map[string]int{
			"Good":  len(ds.Goods),
			"Buyer": len(ds.Buyers),
			"Shop":  len(ds.Shops),
			"Sale":  len(ds.Sales),
		},
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %s is valid\n", path)
	for _, t := range salesTables {
		fmt.Fprintf(w, "  %-6s %d rows\n", t.name, result.Tables[t.name])
	}
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, verrs dataset.ValidationErrors) error {
	if formatter.IsJSON() {
		if err := formatter.Error(ErrCodeValidation, "dataset is invalid", ValidationResult{
			Valid:  false,
			Errors: verrs,
		}); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "✗ dataset is invalid (%d errors)\n", len(verrs))
		for _, e := range verrs {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	return WrapExitError(ExitFailure, "dataset is invalid", verrs)
}
