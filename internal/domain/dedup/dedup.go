// Package dedup removes duplicate lead records from the intake log and
// counts the remaining leads per source.
//
// Two records are duplicates when they agree on phone, assignee and source.
// Only the columns that can be resolved take part in the key; when none of
// them resolve the dataset passes through untouched.
package dedup

import (
	"strings"

	"github.com/eshaffer321/bats-attribution/internal/domain/columns"
	"github.com/eshaffer321/bats-attribution/internal/domain/table"
)

// keySep joins key parts; it cannot appear in text pasted from a spreadsheet.
const keySep = "\x1f"

// LeadCounts maps a source value to the number of leads carrying it.
type LeadCounts map[string]int

// Total returns the number of leads across all sources.
func (c LeadCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Result is the output of Deduplicate.
type Result struct {
	Leads        *table.Table
	Removed      int
	Counts       LeadCounts
	SourceColumn string   // "" when no source column resolved
	KeyColumns   []string // columns that formed the dedup key
}

// Deduplicate normalizes the assignee column, keeps the first record for
// every distinct (phone, assignee, source) key and counts leads per source.
func Deduplicate(leads *table.Table) Result {
	out := leads.Clone()
	if out == nil {
		out = table.Empty()
	}

	assigned, hasAssigned := columns.Resolve(out, columns.AssignedTo)
	if hasAssigned {
		out = out.MapColumn(assigned, table.Normalize)
	}

	var keyIdx []int
	var keyCols []string
	for _, role := range []columns.Role{columns.Phone, columns.AssignedTo, columns.Source} {
		if col, ok := columns.Resolve(out, role); ok {
			keyIdx = append(keyIdx, out.Index(col))
			keyCols = append(keyCols, col)
		}
	}

	before := out.Len()
	if len(keyIdx) > 0 {
		seen := make(map[string]struct{}, before)
		parts := make([]string, len(keyIdx))
		src := out
		out = src.Filter(func(i int) bool {
			for j, idx := range keyIdx {
				parts[j] = src.Rows[i][idx]
			}
			key := strings.Join(parts, keySep)
			if _, dup := seen[key]; dup {
				return false
			}
			seen[key] = struct{}{}
			return true
		})
	}

	res := Result{
		Leads:      out,
		Removed:    before - out.Len(),
		Counts:     LeadCounts{},
		KeyColumns: keyCols,
	}

	if src, ok := columns.Resolve(out, columns.Source); ok {
		res.SourceColumn = src
		idx := out.Index(src)
		for _, r := range out.Rows {
			res.Counts[strings.TrimSpace(r[idx])]++
		}
	}

	return res
}
