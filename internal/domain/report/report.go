// Package report builds the per-source cost-per-lead report.
//
// The lead counts are the authoritative set of sources: sources that only
// appear in matched sales are ignored, because cost is computed per lead.
// For every source:
//
//	total_leads_cost = round(total_leads * lead_cost, 2)
//
// where lead_cost comes from the static cost table and defaults to 1.00.
package report

import (
	"math"
	"sort"

	"github.com/eshaffer321/bats-attribution/internal/domain/dedup"
	"github.com/eshaffer321/bats-attribution/internal/domain/matcher"
)

// DefaultLeadCost applies to sources absent from the cost table.
const DefaultLeadCost = 1.00

// Columns is the fixed column order of the report table.
var Columns = []string{"Source", "Total Leads", "Deposits", "Total Unique Sales", "Lead Cost", "Total Leads Cost"}

// CostTable maps a source name, case-sensitive as stored, to its lead cost.
type CostTable map[string]float64

// Lookup returns the cost for source, or DefaultLeadCost.
func (c CostTable) Lookup(source string) float64 {
	if v, ok := c[source]; ok {
		return v
	}
	return DefaultLeadCost
}

// Row is one line of the report. Deposits stays numeric; use FormatCurrency
// for display.
type Row struct {
	Source           string  `json:"source"`
	TotalLeads       int     `json:"total_leads"`
	Deposits         float64 `json:"deposits"`
	TotalUniqueSales int     `json:"total_unique_sales"`
	LeadCost         float64 `json:"lead_cost"`
	TotalLeadsCost   float64 `json:"total_leads_cost"`
}

// Aggregate joins lead counts, matched sales and lead costs into report
// rows ordered by source, with a blank source last.
func Aggregate(counts dedup.LeadCounts, sales []matcher.MatchedSale, costs CostTable) []Row {
	deposits := make(map[string]float64)
	unique := make(map[string]int)
	for _, s := range sales {
		deposits[s.Source] += s.Deposit
		unique[s.Source]++
	}

	rows := make([]Row, 0, len(counts))
	for source, n := range counts {
		cost := costs.Lookup(source)
		rows = append(rows, Row{
			Source:           source,
			TotalLeads:       n,
			Deposits:         deposits[source],
			TotalUniqueSales: unique[source],
			LeadCost:         cost,
			TotalLeadsCost:   roundToCents(float64(n) * cost),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Source, rows[j].Source
		if (a == "") != (b == "") {
			return b == ""
		}
		return a < b
	})
	return rows
}

// Totals sums the numeric columns of the report.
func Totals(rows []Row) Row {
	total := Row{Source: "Total"}
	for _, r := range rows {
		total.TotalLeads += r.TotalLeads
		total.Deposits += r.Deposits
		total.TotalUniqueSales += r.TotalUniqueSales
		total.TotalLeadsCost += r.TotalLeadsCost
	}
	total.TotalLeadsCost = roundToCents(total.TotalLeadsCost)
	if total.TotalLeads > 0 {
		total.LeadCost = roundToCents(total.TotalLeadsCost / float64(total.TotalLeads))
	}
	return total
}

// roundToCents rounds a float to 2 decimal places.
func roundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
