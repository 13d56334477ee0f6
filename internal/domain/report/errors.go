package report

// EmptySourceError means the leads dataset has no resolvable source column,
// so there is no source universe to report on.
type EmptySourceError struct {
	Dataset string
}

func (e *EmptySourceError) Error() string {
	return "no source column found in " + e.Dataset + " data: no report possible"
}
