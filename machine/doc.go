// Package machine derives and compares the local machines of roles.
//
// Projection keeps, per role, the subscribed slice of a protocol:
// subscribed events become Input transitions, the role's own commands
// become Execute self-loops. Determinization (subset construction) and
// partition-refinement minimization are optional. Chained protocols are
// projected separately and concatenated by synchronized product. The
// adaptation projection overlays an existing machine onto one leg of a
// refreshed chain before re-composing.
package machine
