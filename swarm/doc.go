// Package swarm defines the value types of the analyzer: interned state,
// role, command and event-type names, transition labels for protocols and
// machines, the unordered event pair keying the concurrency relation,
// per-role subscriptions, and the JSON wire shapes exchanged with
// collaborators.
//
// All types here are cheap values with total, stable ordering. Nothing in
// this package performs analysis.
package swarm
