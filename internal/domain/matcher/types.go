package matcher

import (
	"sort"
	"strconv"
	"strings"

	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// SalesColumns is the column set of the matched sales table. An empty
// result still carries these columns.
var SalesColumns = []string{"Source", "Name", "Agent", "Deposit", "Order ID"}

// MatchedSale is one unique sale: every deposit for the same
// (source, customer name, agent) merged together.
type MatchedSale struct {
	Source   string
	Name     string
	Agent    string
	Deposit  float64
	OrderIDs []string // sorted, distinct
}

// OrderIDDisplay joins the order ids for display.
func (s MatchedSale) OrderIDDisplay() string {
	return strings.Join(s.OrderIDs, ", ")
}

// SourceSummary totals the matched sales of one source.
type SourceSummary struct {
	Source           string
	Deposits         float64
	TotalUniqueSales int
}

// Stats counts what happened to the sales rows during a match.
type Stats struct {
	InputRows   int // raw sales rows
	Malformed   int // deposit missing or unparsable
	NonPositive int // deposit <= 0
	Candidates  int // rows entering the joins, after order pre-aggregation
	Pass1       int // candidates attributed by order id + agent
	Pass2       int // candidates attributed by name + agent
	Unmatched   int // candidates with no attributed source
}

// Result is the output of Match.
type Result struct {
	Sales   []MatchedSale
	Summary []SourceSummary
	Stats   Stats
}

// Table renders the matched sales with SalesColumns.
func (r *Result) Table() *table.Table {
	rows := make([][]string, 0, len(r.Sales))
	for _, s := range r.Sales {
		rows = append(rows, []string{
			s.Source,
			s.Name,
			s.Agent,
			strconv.FormatFloat(s.Deposit, 'f', 2, 64),
			s.OrderIDDisplay(),
		})
	}
	return table.New(SalesColumns, rows)
}

// candidate is a sales row that survived deposit filtering.
type candidate struct {
	orderID string
	name    string
	agent   string
	deposit float64
}

// attribution is a candidate joined to a lead source.
type attribution struct {
	source string
	candidate
}

func distinctSorted(values []string) []string {
	set := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
