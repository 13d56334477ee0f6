package matcher

import (
	"strconv"
	"strings"
)

// ParseAmount reads a currency-like cell such as "$1,234.50" or "-$5".
// Every character other than digits, '-' and '.' is discarded before
// parsing, so "(100)" reads as 100.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, &MalformedValueError{Value: raw, Reason: "no numeric content"}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &MalformedValueError{Value: raw, Reason: "not a number"}
	}
	return v, nil
}
