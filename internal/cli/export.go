package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/salesdb/internal/dataset"
	"github.com/roach88/salesdb/internal/store"
)

// Export layouts.
const (
	ExportTables  = "tables"  // one <Table>.json file per table
	ExportDataset = "dataset" // a single dataset.yaml
)

// DatasetFile is the file written by export --as dataset.
const DatasetFile = "dataset.yaml"

// ExportResult lists the files written by export.
type ExportResult struct {
	Dir   string         `json:"dir"`
	Files map[string]int `json:"files"` // file path -> row count
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "export <source> [dir]",
		Short: "Write each table of a source to its own file",
		Long: `Load a source and serialize each table to <dir>/<Table>.json.

Each table file is written atomically: an existing file is only replaced
once the new one is complete. dir defaults to the export_dir setting.

With --as dataset the four tables are written instead as a single
<dir>/dataset.yaml, which validate, query and test accept.

Examples:
  salesdb export sales.db ./tables
  salesdb export ./tables ./out --as dataset`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.config().ExportDir
			if len(args) == 2 {
				dir = args[1]
			}
			return runExport(rootOpts, args[0], dir, as, cmd)
		},
	}

	cmd.Flags().StringVar(&as, "as", ExportTables, "export layout (tables, dataset)")

	return cmd
}

func runExport(opts *RootOptions, source, dir, as string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if as != ExportTables && as != ExportDataset {
		return formatter.fail(ExitCommandError, ErrCodeExport,
			fmt.Sprintf("invalid export layout %q: must be %s or %s", as, ExportTables, ExportDataset), nil)
	}

	db, err := openSource(cmd.Context(), source, opts.logger())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeSource, "failed to open source", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeExport, "failed to create export directory", err)
	}

	result := ExportResult{Dir: dir, Files: make(map[string]int)}
	if as == ExportDataset {
		path := filepath.Join(dir, DatasetFile)
		n, err := exportDataset(db, path)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeExport, "failed to export dataset", err)
		}
		result.Files[path] = n
		formatter.VerboseLog("Wrote %s (%d rows)", path, n)
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %s (%d rows)\n", path, n)
		return nil
	}

	for _, t := range salesTables {
		path := tableFile(dir, t.name)
		if err := t.serialize(db, path); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeExport, fmt.Sprintf("failed to export %s", t.name), err)
		}
		n, err := t.length(db)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeExport, fmt.Sprintf("failed to export %s", t.name), err)
		}
		result.Files[path] = n
		formatter.VerboseLog("Wrote %s (%d rows)", path, n)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, t := range salesTables {
		path := tableFile(dir, t.name)
		fmt.Fprintf(w, "✓ %s (%d rows)\n", path, result.Files[path])
	}
	return nil
}

// exportDataset writes the four tables of db to path as one dataset file
// and returns the total row count.
func exportDataset(db *store.Database, path string) (int, error) {
	ds, err := dataset.Dump(db)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := dataset.Encode(&buf, ds); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return len(ds.Goods) + len(ds.Buyers) + len(ds.Shops) + len(ds.Sales), nil
}
