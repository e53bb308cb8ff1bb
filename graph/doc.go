// Package graph implements the directed multigraph underlying protocols,
// projections and their compositions.
//
// Nodes and edges live in arenas addressed by dense [NodeID] and [EdgeID]
// indices; endpoints are indices into the same graph and there are no
// back-references, so transformation passes can allocate fresh graphs and
// drop old ones freely. The graph is generic over its node payload (any
// type that names a state) and its edge label (swarm or machine labels).
package graph
