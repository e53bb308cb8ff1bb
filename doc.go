// Package swarmcheck analyzes compositional choreographic protocols for
// local-first distributed systems.
//
// A swarm protocol is a finite-state transition system whose edges carry
// commands executed by roles, each emitting one typed event. Several
// protocols compose by synchronizing on the events of shared roles. The
// analyzer checks that such a composition is well-formed with respect to
// a per-role subscription map, synthesizes minimal or overapproximated
// subscriptions, derives per-role projection machines, explains their
// branch and join structure, and adapts existing machines to a modified
// composition.
//
// This package is the operations facade: it accepts wire-shaped values,
// runs the analysis packages, and returns OK/ERROR envelopes. It is pure
// and deterministic; all I/O lives in collaborators such as
// cmd/swarmcheck.
package swarmcheck
