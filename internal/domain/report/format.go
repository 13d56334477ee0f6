package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// FormatCurrency renders an amount in whole dollars with thousands
// separators, e.g. 12345.4 -> "$12,345". Halves round to even.
func FormatCurrency(amount float64) string {
	v := math.RoundToEven(amount)
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatFloat(v, 'f', 0, 64)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

// FormatCost renders a cost with two decimals.
func FormatCost(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// ToTable renders report rows for display or export.
func ToTable(rows []Row) *table.Table {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Source,
			strconv.Itoa(r.TotalLeads),
			FormatCurrency(r.Deposits),
			strconv.Itoa(r.TotalUniqueSales),
			FormatCost(r.LeadCost),
			FormatCost(r.TotalLeadsCost),
		})
	}
	return table.New(Columns, out)
}
