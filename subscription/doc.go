// Package subscription synthesizes and verifies per-role subscriptions.
//
// The exact solver expands the protocol chain into its explicit
// composition and chases the causal-consistency and determinacy rules to
// a least fixed point. The overapproximating solver runs the same rules
// over the un-expanded chain, trading precision for state space, with a
// granularity knob controlling how eagerly the determinacy rules fire.
// The checker verifies a candidate subscription against the rules without
// solving.
package subscription
