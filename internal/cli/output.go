package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/bats-attribution/internal/application/reconcile"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, leads, sales string) {
	if sales == "" {
		sales = "none"
	}
	fmt.Fprintf(w, "bats-reconcile: leads=%s sales=%s\n\n", leads, sales)
}

// PrintDedupSummary prints what deduplication removed and the lead counts
func PrintDedupSummary(w io.Writer, res *reconcile.Result) {
	d := res.Dedup
	fmt.Fprintf(w, "Leads: %d kept, %d duplicates removed", d.Leads.Len(), d.Removed)
	if len(d.KeyColumns) > 0 {
		fmt.Fprintf(w, " (key: %s)", strings.Join(d.KeyColumns, ", "))
	}
	fmt.Fprintln(w)

	sources := make([]string, 0, len(d.Counts))
	for s := range d.Counts {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		label := s
		if label == "" {
			label = "(blank)"
		}
		fmt.Fprintf(w, "  %-30s %d\n", label, d.Counts[s])
	}
	fmt.Fprintln(w)
}

// PrintMatchSummary prints how the sales rows were attributed
func PrintMatchSummary(w io.Writer, res *reconcile.Result) {
	if !res.SalesLoaded {
		fmt.Fprintln(w, "Sales: not loaded, deposits are zero")
		fmt.Fprintln(w)
		return
	}
	st := res.Match.Stats
	fmt.Fprintf(w, "Sales: rows=%d malformed=%d non-positive=%d\n", st.InputRows, st.Malformed, st.NonPositive)
	fmt.Fprintf(w, "Matched: order-id=%d name=%d unmatched=%d unique=%d\n\n", st.Pass1, st.Pass2, st.Unmatched, len(res.Match.Sales))
}

// PrintTable prints a table aligned in columns. max <= 0 prints every row.
func PrintTable(w io.Writer, t *table.Table, max int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for i, r := range t.Rows {
		if max > 0 && i >= max {
			break
		}
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if max > 0 && t.Len() > max {
		fmt.Fprintf(w, "... %d more rows\n", t.Len()-max)
	}
	return nil
}

// PrintReport prints the full run summary and the report table
func PrintReport(w io.Writer, res *reconcile.Result, preview int) error {
	PrintDedupSummary(w, res)
	PrintMatchSummary(w, res)

	if preview > 0 {
		fmt.Fprintln(w, "Leads preview:")
		if err := PrintTable(w, res.Dedup.Leads, preview); err != nil {
			return err
		}
		fmt.Fprintln(w)
		if res.SalesLoaded {
			fmt.Fprintln(w, "Matched sales preview:")
			if err := PrintTable(w, res.Match.Table(), preview); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	if err := PrintTable(w, res.ReportTable(), 0); err != nil {
		return err
	}
	if res.Check != nil {
		for _, reason := range res.Check.Reasons {
			fmt.Fprintf(w, "WARNING: %s\n", reason)
		}
	}
	return nil
}
