package graph

import (
	"fmt"

	"github.com/simon-lentz/swarmcheck/swarm"
)

// NodeID identifies a node within its owning graph. IDs are dense indices
// assigned in insertion order; they are not valid across graphs.
type NodeID int

// EdgeID identifies an edge within its owning graph.
type EdgeID int

// NoNode is the absent node, used for unknown initial states.
const NoNode NodeID = -1

// Node constrains node payloads: anything that can name itself as a state.
// Plain [swarm.State] satisfies it, as do richer payloads like the
// adaptation overlay nodes.
type Node interface {
	StateName() swarm.State
}

// Label constrains edge payloads: comparable (labels key composition
// maps), printable, and carrying a single event type. [swarm.SwarmLabel]
// and [swarm.MachineLabel] satisfy it.
type Label interface {
	comparable
	fmt.Stringer
	EventType() swarm.EventType
}

type nodeData[N Node] struct {
	payload N
	out     []EdgeID
	in      []EdgeID
}

type edgeData[L Label] struct {
	src, dst NodeID
	label    L
}

// Graph is a directed multigraph with typed node and edge payloads.
//
// Graphs are mutable while being built and treated as immutable once the
// building phase hands them on; every transformation (composition,
// projection, minimization) allocates a fresh graph and leaves its inputs
// untouched. Adjacency lists preserve insertion order, so traversals are
// deterministic for identical construction sequences.
type Graph[N Node, L Label] struct {
	nodes []nodeData[N]
	edges []edgeData[L]
}

// New creates an empty graph.
func New[N Node, L Label]() *Graph[N, L] {
	return &Graph[N, L]{}
}

// AddNode appends a node and returns its id.
func (g *Graph[N, L]) AddNode(payload N) NodeID {
	g.nodes = append(g.nodes, nodeData[N]{payload: payload})
	return NodeID(len(g.nodes) - 1)
}

// AddEdge appends a directed edge and returns its id.
// Panics if either endpoint is out of range.
func (g *Graph[N, L]) AddEdge(src, dst NodeID, label L) EdgeID {
	if !g.HasNode(src) || !g.HasNode(dst) {
		panic(fmt.Sprintf("graph.AddEdge: endpoint out of range (%d, %d)", src, dst))
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edgeData[L]{src: src, dst: dst, label: label})
	g.nodes[src].out = append(g.nodes[src].out, id)
	g.nodes[dst].in = append(g.nodes[dst].in, id)
	return id
}

// HasNode reports whether n is a node of g.
func (g *Graph[N, L]) HasNode(n NodeID) bool {
	return n >= 0 && int(n) < len(g.nodes)
}

// NodeCount returns the number of nodes.
func (g *Graph[N, L]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph[N, L]) EdgeCount() int { return len(g.edges) }

// Node returns the payload of n.
func (g *Graph[N, L]) Node(n NodeID) N { return g.nodes[n].payload }

// State returns the state name of n.
func (g *Graph[N, L]) State(n NodeID) swarm.State { return g.nodes[n].payload.StateName() }

// Label returns the payload of e.
func (g *Graph[N, L]) Label(e EdgeID) L { return g.edges[e].label }

// Source returns the source node of e.
func (g *Graph[N, L]) Source(e EdgeID) NodeID { return g.edges[e].src }

// Target returns the target node of e.
func (g *Graph[N, L]) Target(e EdgeID) NodeID { return g.edges[e].dst }

// Out returns the outgoing edges of n in insertion order.
// The returned slice is owned by the graph and must not be modified.
func (g *Graph[N, L]) Out(n NodeID) []EdgeID { return g.nodes[n].out }

// In returns the incoming edges of n in insertion order.
// The returned slice is owned by the graph and must not be modified.
func (g *Graph[N, L]) In(n NodeID) []EdgeID { return g.nodes[n].in }

// IsTerminal reports whether n has no outgoing edges.
func (g *Graph[N, L]) IsTerminal(n NodeID) bool { return len(g.nodes[n].out) == 0 }

// NodeIDs returns all node ids in insertion order.
func (g *Graph[N, L]) NodeIDs() []NodeID {
	out := make([]NodeID, len(g.nodes))
	for i := range g.nodes {
		out[i] = NodeID(i)
	}
	return out
}

// EdgeIDs returns all edge ids in insertion order.
func (g *Graph[N, L]) EdgeIDs() []EdgeID {
	out := make([]EdgeID, len(g.edges))
	for i := range g.edges {
		out[i] = EdgeID(i)
	}
	return out
}

// EdgeString renders e as "(src)--[label]-->(dst)" for reports.
func (g *Graph[N, L]) EdgeString(e EdgeID) string {
	ed := g.edges[e]
	return "(" + g.State(ed.src).String() + ")--[" + ed.label.String() + "]-->(" + g.State(ed.dst).String() + ")"
}

// MapNodes returns a fresh graph with the same shape and edge labels,
// with every node payload transformed by f.
func MapNodes[N1, N2 Node, L Label](g *Graph[N1, L], f func(N1) N2) *Graph[N2, L] {
	out := New[N2, L]()
	for _, nd := range g.nodes {
		out.AddNode(f(nd.payload))
	}
	for _, ed := range g.edges {
		out.AddEdge(ed.src, ed.dst, ed.label)
	}
	return out
}
