package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/salesdb/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Only string // single query name
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <source>",
		Short: "Run the sales queries over a source",
		Long: `Load a source and run every sales query over it, or just one with --only.

A source is a YAML dataset (.yaml, .yml), a directory of table files
written by export, or a SQLite archive (.db), whose latest snapshot is used.

Queries:
  goods_of_longest_name_buyer          goods bought by the buyer with the longest name
  most_expensive_good_category         category of the highest priced good
  minimum_sales_city                   city with the least sales revenue
  most_popular_good_buyers             buyers of the good sold in the largest quantity
  minimum_number_of_shops_in_country   fewest shops any country has
  other_city_sales                     sales made outside the buyer's city
  total_sales_value                    sum of price x quantity over all sales

Examples:
  salesdb query data.yaml
  salesdb query ./export --only total_sales_value
  salesdb query archive.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Only, "only", "", "run a single query by name")

	return cmd
}

func runQuery(opts *QueryOptions, source string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Only != "" && !query.IsName(opts.Only) {
		return formatter.fail(ExitCommandError, ErrCodeQuery,
			fmt.Sprintf("unknown query %q", opts.Only), nil)
	}

	db, err := openSource(cmd.Context(), source, opts.logger())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeSource, "failed to open source", err)
	}
	formatter.VerboseLog("Loaded %s: %v", source, db.Tables())

	report, err := query.Run(db)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeQuery, "query failed", err)
	}

	names := query.Names()
	if opts.Only != "" {
		names = []string{opts.Only}
	}

	if formatter.IsJSON() {
		if opts.Only != "" {
			value, _ := report.Value(opts.Only)
			return formatter.Success(map[string]any{opts.Only: value})
		}
		return formatter.Success(report)
	}

	return renderReport(formatter.Writer, report, names)
}
