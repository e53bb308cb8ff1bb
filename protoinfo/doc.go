// Package protoinfo ingests external protocol descriptions and derives
// the data every later phase consumes: role/event maps, branch groups,
// immediately-preceding and succeeding event relations, the concurrency
// overapproximation, interfacing events, joining events and
// infinitely-looping events.
//
// A chain of protocols is combined by a left-to-right fold that
// synchronizes on the event types of shared roles. The explicit
// synchronized product is only built when a phase needs the expanded
// state space (the exact subscription solver, compose_protocols).
package protoinfo
