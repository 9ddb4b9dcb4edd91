package reconcile

import "fmt"

// UnresolvedError reports a record no rule could tie to a database game
type UnresolvedError struct {
	Team   string
	Date   string
	Season string
	Reason string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved %s on %s (season %s): %s", e.Team, e.Date, e.Season, e.Reason)
}

// Result holds the outcome counts of one pipeline stage
type Result struct {
	Stage      string
	Examined   int
	Updated    int
	Corrected  int
	Skipped    int
	Unresolved int
	Errors     []string
}

// Add merges another result into this one
func (r *Result) Add(other Result) {
	r.Examined += other.Examined
	r.Updated += other.Updated
	r.Corrected += other.Corrected
	r.Skipped += other.Skipped
	r.Unresolved += other.Unresolved
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the stage.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"%s: examined=%d updated=%d corrected=%d skipped=%d unresolved=%d errors=%d",
		r.Stage, r.Examined, r.Updated, r.Corrected, r.Skipped, r.Unresolved, len(r.Errors),
	)
}
