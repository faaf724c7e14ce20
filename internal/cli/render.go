package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/roach88/salesdb/internal/archive"
	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/query"
)

// renderReport writes the named results as text: scalars on one line,
// record lists as tables.
func renderReport(w io.Writer, report *query.Report, names []string) error {
	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(w)
		}
		value, ok := report.Value(name)
		if !ok {
			return fmt.Errorf("unknown query %q", name)
		}

		switch v := value.(type) {
		case *string:
			if v == nil {
				fmt.Fprintf(w, "%s: (none)\n", name)
			} else {
				fmt.Fprintf(w, "%s: %s\n", name, *v)
			}
		case []model.Good:
			fmt.Fprintf(w, "%s:\n", name)
			renderRows(w, table.Row{"id", "category", "price"}, v, func(g model.Good) table.Row {
				return table.Row{g.ID, g.Category, g.Price}
			})
		case []model.Buyer:
			fmt.Fprintf(w, "%s:\n", name)
			renderRows(w, table.Row{"id", "name", "city"}, v, func(b model.Buyer) table.Row {
				return table.Row{b.ID, b.Name, b.City}
			})
		case []model.Sale:
			fmt.Fprintf(w, "%s:\n", name)
			renderRows(w, table.Row{"id", "good_id", "buyer_id", "shop_id", "quantity"}, v, func(s model.Sale) table.Row {
				return table.Row{s.ID, s.GoodID, s.BuyerID, s.ShopID, s.Quantity}
			})
		default:
			fmt.Fprintf(w, "%s: %v\n", name, v)
		}
	}
	return nil
}

func renderRows[T any](w io.Writer, header table.Row, rows []T, row func(T) table.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	for _, r := range rows {
		t.AppendRow(row(r))
	}
	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// renderSnapshots writes the archive's snapshots as a table.
func renderSnapshots(w io.Writer, snaps []archive.Snapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"seq", "id", "label", "tables"})
	for _, s := range snaps {
		t.AppendRow(table.Row{s.Seq, s.ID, s.Label, formatTables(s.Tables)})
	}
	t.Render()
}

// formatTables renders table summaries as "Buyer=2 Good=4".
func formatTables(tables []archive.TableSummary) string {
	out := ""
	for i, ts := range tables {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", ts.Name, ts.Rows)
	}
	return out
}
