// Package matcher attributes sales transactions to the lead source they
// came from.
//
// Sales rows are matched against deduplicated leads in two passes:
//   - Pass 1: sales order id equals the lead number, and the sales agent
//     equals the lead assignee
//   - Pass 2: for sales whose order id was not matched in pass 1, the
//     customer name and agent must equal the lead customer name and assignee
//
// An order id match always wins; the name match only fills gaps. Rows with
// a missing, unparsable or non-positive deposit never take part, and rows
// that end up with no source are dropped rather than reported as unknown.
//
// Example usage:
//
//	res, err := matcher.Match(sales, dedupResult.Leads)
//	var missing *matcher.MissingColumnsError
//	if errors.As(err, &missing) {
//		// report every missing role at once
//	}
package matcher

import (
	"sort"
	"strings"

	"github.com/eshaffer321/bats-attribution/internal/domain/columns"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// required lists the roles that must resolve, per dataset, in the order
// they are reported.
var required = []struct {
	dataset string
	role    columns.Role
}{
	{"sales", columns.Agent},
	{"leads", columns.AssignedTo},
	{"sales", columns.Deposit},
	{"leads", columns.Source},
	{"sales", columns.CustomerNameSales},
	{"leads", columns.CustomerNameLeads},
}

// Match joins sales to leads and returns the attributed, deduplicated
// sales with a per-source summary. Neither input is modified.
func Match(sales, leads *table.Table) (*Result, error) {
	found := map[string]map[columns.Role]string{"sales": {}, "leads": {}}
	var missing []string
	for _, req := range required {
		t := sales
		if req.dataset == "leads" {
			t = leads
		}
		col, ok := columns.Resolve(t, req.role)
		if !ok {
			missing = append(missing, req.dataset+"."+string(req.role))
			continue
		}
		found[req.dataset][req.role] = col
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Roles: missing}
	}

	salesOrderCol, hasSalesOrder := columns.Resolve(sales, columns.OrderIDSales)
	leadsOrderCol, hasLeadsOrder := columns.Resolve(leads, columns.OrderIDLeads)

	res := &Result{Stats: Stats{InputRows: sales.Len()}}

	cands := collectCandidates(sales, found["sales"], salesOrderCol, &res.Stats)
	if hasSalesOrder {
		cands = preAggregate(cands)
	}
	res.Stats.Candidates = len(cands)

	idx := indexLeads(leads, found["leads"], leadsOrderCol)
	useOrderID := hasSalesOrder && hasLeadsOrder

	var matched []attribution
	matchedOrders := make(map[string]struct{})
	if useOrderID {
		for _, c := range cands {
			if table.IsMissing(c.orderID) {
				continue
			}
			srcs := idx.byOrder[joinKey(c.orderID, c.agent)]
			if len(srcs) == 0 {
				continue
			}
			matchedOrders[c.orderID] = struct{}{}
			attributed := false
			for _, src := range srcs {
				if !table.IsMissing(src) {
					matched = append(matched, attribution{source: src, candidate: c})
					attributed = true
				}
			}
			if attributed {
				res.Stats.Pass1++
			}
		}
	}

	for _, c := range cands {
		if useOrderID {
			if _, done := matchedOrders[c.orderID]; done && !table.IsMissing(c.orderID) {
				continue
			}
		}
		if table.IsMissing(c.name) {
			continue
		}
		attributed := false
		for _, src := range idx.byName[joinKey(c.name, c.agent)] {
			if !table.IsMissing(src) {
				matched = append(matched, attribution{source: src, candidate: c})
				attributed = true
			}
		}
		if attributed {
			res.Stats.Pass2++
		}
	}
	res.Stats.Unmatched = res.Stats.Candidates - res.Stats.Pass1 - res.Stats.Pass2

	res.Sales = groupSales(matched)
	res.Summary = summarize(res.Sales)
	return res, nil
}

func collectCandidates(sales *table.Table, cols map[columns.Role]string, orderCol string, st *Stats) []candidate {
	agentIdx := sales.Index(cols[columns.Agent])
	nameIdx := sales.Index(cols[columns.CustomerNameSales])
	depIdx := sales.Index(cols[columns.Deposit])
	orderIdx := sales.Index(orderCol)

	out := make([]candidate, 0, sales.Len())
	for _, r := range sales.Rows {
		amount, err := ParseAmount(r[depIdx])
		if err != nil {
			st.Malformed++
			continue
		}
		if amount <= 0 {
			st.NonPositive++
			continue
		}
		c := candidate{
			name:    table.Normalize(r[nameIdx]),
			agent:   table.Normalize(r[agentIdx]),
			deposit: amount,
		}
		if orderIdx >= 0 {
			c.orderID = strings.TrimSpace(r[orderIdx])
		}
		out = append(out, c)
	}
	return out
}

// preAggregate collapses multi-line orders: rows sharing
// (order id, agent, name) become one candidate with the summed deposit.
func preAggregate(cands []candidate) []candidate {
	pos := make(map[string]int, len(cands))
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		k := joinKey(c.orderID, c.agent, c.name)
		if i, ok := pos[k]; ok {
			out[i].deposit += c.deposit
			continue
		}
		pos[k] = len(out)
		out = append(out, c)
	}
	return out
}

type leadIndex struct {
	byOrder map[string][]string // (number, assignee) -> distinct sources
	byName  map[string][]string // (customer name, assignee) -> distinct sources
}

func indexLeads(leads *table.Table, cols map[columns.Role]string, orderCol string) leadIndex {
	idx := leadIndex{byOrder: map[string][]string{}, byName: map[string][]string{}}
	assignIdx := leads.Index(cols[columns.AssignedTo])
	nameIdx := leads.Index(cols[columns.CustomerNameLeads])
	srcIdx := leads.Index(cols[columns.Source])
	orderIdx := leads.Index(orderCol)

	for _, r := range leads.Rows {
		assignee := table.Normalize(r[assignIdx])
		src := strings.TrimSpace(r[srcIdx])
		if orderIdx >= 0 {
			if num := strings.TrimSpace(r[orderIdx]); !table.IsMissing(num) {
				k := joinKey(num, assignee)
				idx.byOrder[k] = appendDistinct(idx.byOrder[k], src)
			}
		}
		if name := table.Normalize(r[nameIdx]); !table.IsMissing(name) {
			k := joinKey(name, assignee)
			idx.byName[k] = appendDistinct(idx.byName[k], src)
		}
	}
	return idx
}

func groupSales(matched []attribution) []MatchedSale {
	type group struct {
		sale     MatchedSale
		orderIDs []string
	}
	pos := map[string]int{}
	var groups []group
	for _, m := range matched {
		k := joinKey(m.source, m.name, m.agent)
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			groups = append(groups, group{sale: MatchedSale{Source: m.source, Name: m.name, Agent: m.agent}})
		}
		groups[i].sale.Deposit += m.deposit
		groups[i].orderIDs = append(groups[i].orderIDs, m.orderID)
	}

	out := make([]MatchedSale, 0, len(groups))
	for _, g := range groups {
		g.sale.OrderIDs = distinctSorted(g.orderIDs)
		out = append(out, g.sale)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Agent < out[j].Agent
	})
	return out
}

func summarize(sales []MatchedSale) []SourceSummary {
	var out []SourceSummary
	for _, s := range sales {
		if n := len(out); n > 0 && out[n-1].Source == s.Source {
			out[n-1].Deposits += s.Deposit
			out[n-1].TotalUniqueSales++
			continue
		}
		out = append(out, SourceSummary{Source: s.Source, Deposits: s.Deposit, TotalUniqueSales: 1})
	}
	return out
}

func appendDistinct(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func joinKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}
