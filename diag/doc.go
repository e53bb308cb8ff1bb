// Package diag defines the analyzer's finding model: severities, a closed
// set of stable error codes, immutable issues, collectors that accumulate
// findings without aborting, and reports grouping results per protocol.
//
// Analysis findings are values, never Go errors: every phase returns its
// complete set of findings and downstream phases decide whether to
// proceed. Messages are rendered at the detection site, where the owning
// graph is available to pretty-print transition references like
// (src)--[label]-->(dst); details carry the same data programmatically.
package diag
