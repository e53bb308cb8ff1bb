package diag

import (
	"fmt"
	"sync"
)

// Collector accumulates issues with precomputed severity counts.
//
// Collector is safe for concurrent use. The analysis pipeline itself is
// single-threaded, but callers may fan analysis calls out across
// goroutines and merge into one collector.
//
// Issues are kept in collection order: the pipeline collects phase by
// phase and in deterministic graph order, so reports replay the order in
// which findings were made.
type Collector struct {
	mu     sync.Mutex
	issues []Issue

	errorCount   int
	warningCount int
	infoCount    int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect adds an issue.
//
// Collect panics if the issue is a zero value or is invalid; use [NewIssue]
// and [IssueBuilder] to construct valid issues.
func (c *Collector) Collect(issue Issue) {
	validateIssue(issue)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.collectLocked(issue)
}

// CollectAll adds multiple issues under a single lock.
//
// Panics if any issue is invalid (see [Collect]).
func (c *Collector) CollectAll(issues []Issue) {
	for _, issue := range issues {
		validateIssue(issue)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, issue := range issues {
		c.collectLocked(issue)
	}
}

// Merge incorporates all issues from a Result.
//
// Results are structurally guaranteed to contain only valid issues, so
// Merge does not re-validate.
func (c *Collector) Merge(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, issue := range res.issues {
		c.collectLocked(issue)
	}
}

func validateIssue(issue Issue) {
	if issue.IsZero() {
		panic("diag.Collector.Collect: zero-value Issue")
	}
	if !issue.IsValid() {
		panic(fmt.Sprintf("diag.Collector.Collect: invalid Issue (code=%s, message=%q)",
			issue.Code().String(), issue.Message()))
	}
}

// collectLocked adds an issue. Caller must hold c.mu.
func (c *Collector) collectLocked(issue Issue) {
	c.issues = append(c.issues, issue)
	switch issue.Severity() {
	case Error:
		c.errorCount++
	case Warning:
		c.warningCount++
	case Info:
		c.infoCount++
	}
}

// Result produces an immutable snapshot. Subsequent Collect calls do not
// affect the returned Result.
func (c *Collector) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	issues := make([]Issue, len(c.issues))
	copy(issues, c.issues)
	return newResult(issues)
}

// OK reports whether no Error issues have been collected.
func (c *Collector) OK() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorCount == 0
}

// Len returns the number of collected issues.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.issues)
}
