package matcher

import (
	"fmt"
	"strings"
)

// MissingColumnsError reports every required column role that could not be
// resolved on the sales or leads dataset. It is returned before any
// matching work begins.
type MissingColumnsError struct {
	Roles []string // qualified role names, e.g. "sales.agent"
}

func (e *MissingColumnsError) Error() string {
	return "required columns missing or not detected: " + strings.Join(e.Roles, ", ")
}

// MalformedValueError is returned by ParseAmount for a value that cannot be
// read as a number. The matcher recovers from it by dropping the row.
type MalformedValueError struct {
	Value  string
	Reason string
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed amount %q: %s", e.Value, e.Reason)
}
