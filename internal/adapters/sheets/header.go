package sheets

import (
	"strings"
)

const (
	// genericHeaderScan is how many leading rows may be skipped as titles.
	genericHeaderScan = 3
	// leadsHeaderScan is how many leading rows are searched for the BATS header.
	leadsHeaderScan = 5
)

// DetectHeaderRow returns the index of the header row: leading rows with at
// most one non-empty cell (titles, merged banners, blank lines) are
// skipped, up to three of them.
func DetectHeaderRow(rows [][]string) int {
	skip := 0
	for i := 0; i < genericHeaderScan && i < len(rows); i++ {
		if nonEmpty(rows[i]) > 1 {
			break
		}
		skip++
	}
	return skip
}

// DetectLeadsHeaderRow looks through the first rows of a BATS export for the
// one that names the phone, assigned and source columns.
func DetectLeadsHeaderRow(rows [][]string) (int, bool) {
	for i := 0; i < leadsHeaderScan && i < len(rows); i++ {
		var phone, assigned, source bool
		for _, cell := range rows[i] {
			v := strings.ToLower(cell)
			phone = phone || strings.Contains(v, "phone")
			assigned = assigned || strings.Contains(v, "assigned")
			source = source || strings.Contains(v, "source")
		}
		if phone && assigned && source {
			return i, true
		}
	}
	return 0, false
}

func nonEmpty(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
