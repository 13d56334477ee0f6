package reconcile

import (
	"io"

	"github.com/eshaffer321/bats-attribution/internal/adapters/sheets"
	"github.com/eshaffer321/bats-attribution/internal/domain/report"
)

// Sheet names of the exported workbook.
const (
	SheetLeads  = "Leads"
	SheetSales  = "Matched Sales"
	SheetReport = "Report"
)

// Sheets returns the deduplicated leads, the matched sales and the report
// as workbook sheets. Counts, costs and sale deposits are numeric; report
// deposits keep their currency display form.
func (r *Result) Sheets() []sheets.Sheet {
	return []sheets.Sheet{
		{Name: SheetReport, Table: r.ReportTable(), Values: r.reportValues()},
		{Name: SheetSales, Table: r.Match.Table(), Values: r.salesValues()},
		{Name: SheetLeads, Table: r.Dedup.Leads},
	}
}

func (r *Result) reportValues() [][]interface{} {
	rows := append(append([]report.Row(nil), r.Report...), r.Totals)
	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		out = append(out, []interface{}{
			row.Source,
			row.TotalLeads,
			report.FormatCurrency(row.Deposits),
			row.TotalUniqueSales,
			row.LeadCost,
			row.TotalLeadsCost,
		})
	}
	return out
}

func (r *Result) salesValues() [][]interface{} {
	out := make([][]interface{}, 0, len(r.Match.Sales))
	for _, s := range r.Match.Sales {
		out = append(out, []interface{}{s.Source, s.Name, s.Agent, s.Deposit, s.OrderIDDisplay()})
	}
	return out
}

// WriteWorkbook writes the result as an XLSX workbook.
func (r *Result) WriteWorkbook(w io.Writer) error {
	return sheets.WriteWorkbook(w, r.Sheets()...)
}
