package diag

import "iter"

// Result is an immutable snapshot of issues with precomputed counts.
//
// Results are obtained via [Collector.Result] or [OK] for empty success
// results. There is no public constructor accepting arbitrary issues; this
// ensures every issue in a Result is valid.
type Result struct {
	issues []Issue

	errorCount   int
	warningCount int
	infoCount    int
}

// newResult creates a Result owning the given slice.
func newResult(issues []Issue) Result {
	r := Result{issues: issues}
	for _, issue := range issues {
		switch issue.Severity() {
		case Error:
			r.errorCount++
		case Warning:
			r.warningCount++
		case Info:
			r.infoCount++
		}
	}
	return r
}

// OK returns a Result representing success (no issues).
func OK() Result { return Result{} }

// OK reports whether no Error issues are present.
func (r Result) OK() bool { return r.errorCount == 0 }

// HasErrors reports whether any Error issue is present.
func (r Result) HasErrors() bool { return r.errorCount > 0 }

// Len returns the number of issues.
func (r Result) Len() int { return len(r.issues) }

// Issues returns an iterator over the issues in collection order.
func (r Result) Issues() iter.Seq[Issue] {
	return func(yield func(Issue) bool) {
		for _, issue := range r.issues {
			if !yield(issue) {
				return
			}
		}
	}
}

// Messages returns the rendered messages in collection order.
func (r Result) Messages() []string {
	if len(r.issues) == 0 {
		return nil
	}
	out := make([]string, len(r.issues))
	for i, issue := range r.issues {
		out[i] = issue.Message()
	}
	return out
}

// CodeSeen reports whether any issue carries the given code.
func (r Result) CodeSeen(code Code) bool {
	for _, issue := range r.issues {
		if issue.Code() == code {
			return true
		}
	}
	return false
}
