package diag

// Report is an ordered sequence of per-source results, one per protocol or
// phase, in pipeline order. The facade flattens reports to strings for the
// result envelopes.
type Report struct {
	results []Result
}

// Add appends a result to the report. Empty results are kept so that
// report positions line up with protocol indices.
func (r *Report) Add(res Result) {
	r.results = append(r.results, res)
}

// OK reports whether every result in the report is error-free.
func (r Report) OK() bool {
	for _, res := range r.results {
		if res.HasErrors() {
			return false
		}
	}
	return true
}

// Results returns the per-source results in order.
func (r Report) Results() []Result {
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// Messages flattens the report to rendered messages in order.
func (r Report) Messages() []string {
	var out []string
	for _, res := range r.results {
		out = append(out, res.Messages()...)
	}
	return out
}

// CodeSeen reports whether any result carries the given code.
func (r Report) CodeSeen(code Code) bool {
	for _, res := range r.results {
		if res.CodeSeen(code) {
			return true
		}
	}
	return false
}
