// Package columns finds the column that plays a semantic role in a dataset.
//
// Spreadsheet exports name their headers differently depending on who
// produced them, so columns are discovered heuristically: a header matches
// a role when its trimmed, lowercased name contains one of the role's
// aliases. The first matching column (in column order) wins.
//
// Example usage:
//
//	col, ok := columns.Resolve(leads, columns.Source)
//	if !ok {
//		// no source column in this dataset
//	}
package columns

import (
	"strings"

	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// Role is a semantic column role.
type Role string

const (
	Phone             Role = "phone"
	AssignedTo        Role = "assigned_to"
	Source            Role = "source"
	Agent             Role = "agent"
	OrderIDSales      Role = "order_id_sales"
	OrderIDLeads      Role = "order_id_leads"
	CustomerNameSales Role = "customer_name_sales"
	CustomerNameLeads Role = "customer_name_leads"
	Deposit           Role = "deposit"
)

// Rules maps each role to the header substrings that identify it.
var Rules = map[Role][]string{
	Phone:             {"phone"},
	AssignedTo:        {"assigned"},
	Source:            {"source"},
	Agent:             {"agent"},
	OrderIDSales:      {"order id"},
	OrderIDLeads:      {"number"},
	CustomerNameSales: {"name", "customer name"},
	CustomerNameLeads: {"customer name"},
	Deposit:           {"deposit"},
}

// Resolve returns the first column of t whose normalized name contains one
// of the role's aliases.
func Resolve(t *table.Table, role Role) (string, bool) {
	if t == nil {
		return "", false
	}
	aliases := Rules[role]
	for _, c := range t.Columns {
		name := strings.ToLower(strings.TrimSpace(c))
		for _, alias := range aliases {
			if strings.Contains(name, alias) {
				return c, true
			}
		}
	}
	return "", false
}

// Resolution is the outcome of resolving several roles at once.
type Resolution struct {
	Found   map[Role]string
	Missing []Role
}

// Column returns the resolved column for role, or "" when it was not found.
func (r Resolution) Column(role Role) string {
	return r.Found[role]
}

// ResolveAll resolves every role and collects the ones that did not
// resolve, in the order they were requested.
func ResolveAll(t *table.Table, roles ...Role) Resolution {
	res := Resolution{Found: make(map[Role]string, len(roles))}
	for _, role := range roles {
		if col, ok := Resolve(t, role); ok {
			res.Found[role] = col
		} else {
			res.Missing = append(res.Missing, role)
		}
	}
	return res
}
