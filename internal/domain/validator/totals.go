// Package validator cross-checks a finished report against its inputs.
//
// A report is consistent when the deposits it shows add up to the matched
// sales, its lead totals add up to the deduplicated lead count, and every
// row's total lead cost equals leads times cost rounded to cents.
package validator

import (
	"fmt"
	"math"

	"github.com/eshaffer321/bats-attribution/internal/domain/matcher"
	"github.com/eshaffer321/bats-attribution/internal/domain/report"
)

// depositTolerance allows for float rounding when summing deposits.
const depositTolerance = 0.02

// TotalsValidation contains the result of validating a report.
type TotalsValidation struct {
	// Valid is true if every check passed
	Valid bool

	// MatchedDeposits is the sum of all matched sale deposits
	MatchedDeposits float64

	// ReportedDeposits is the sum of the report's deposit column
	ReportedDeposits float64

	// Difference is ReportedDeposits - MatchedDeposits
	Difference float64

	// LeadRows is the number of deduplicated leads
	LeadRows int

	// ReportedLeads is the sum of the report's lead column
	ReportedLeads int

	// Reasons explains each failed check (empty if valid)
	Reasons []string
}

// ValidateTotals checks rows against the matched sales and the number of
// deduplicated lead rows they were built from.
func ValidateTotals(rows []report.Row, sales []matcher.MatchedSale, leadRows int) *TotalsValidation {
	v := &TotalsValidation{LeadRows: leadRows}

	inReport := make(map[string]bool, len(rows))
	for _, r := range rows {
		inReport[r.Source] = true
		v.ReportedDeposits += r.Deposits
		v.ReportedLeads += r.TotalLeads

		want := roundToCents(float64(r.TotalLeads) * r.LeadCost)
		if math.Abs(r.TotalLeadsCost-want) > 0.005 {
			v.Reasons = append(v.Reasons, fmt.Sprintf("source %q: total lead cost %.2f, expected %d x %.2f = %.2f",
				r.Source, r.TotalLeadsCost, r.TotalLeads, r.LeadCost, want))
		}
	}

	orphaned := map[string]bool{}
	for _, s := range sales {
		v.MatchedDeposits += s.Deposit
		if !inReport[s.Source] {
			orphaned[s.Source] = true
		}
	}
	v.MatchedDeposits = roundToCents(v.MatchedDeposits)
	v.ReportedDeposits = roundToCents(v.ReportedDeposits)
	v.Difference = roundToCents(v.ReportedDeposits - v.MatchedDeposits)

	if math.Abs(v.Difference) > depositTolerance {
		v.Reasons = append(v.Reasons, fmt.Sprintf("reported deposits ($%.2f) differ from matched sales ($%.2f) by $%.2f",
			v.ReportedDeposits, v.MatchedDeposits, v.Difference))
	}
	if len(orphaned) > 0 {
		v.Reasons = append(v.Reasons, fmt.Sprintf("deposits attributed to %d source(s) with no leads", len(orphaned)))
	}
	if v.ReportedLeads != leadRows {
		v.Reasons = append(v.Reasons, fmt.Sprintf("report counts %d leads but %d were kept after deduplication", v.ReportedLeads, leadRows))
	}

	v.Valid = len(v.Reasons) == 0
	return v
}

// roundToCents rounds a float to 2 decimal places.
func roundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
