package machine

import (
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/graph/compose"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// Graph is the concrete machine graph: states on nodes, machine labels on
// edges.
type Graph = graph.Graph[swarm.State, swarm.MachineLabel]

// Project derives the local machine of role from a protocol graph.
//
// A machine node exists for the protocol's initial state and for every
// state with an incoming subscribed event. From each such node, the
// subscribed edges reachable through unsubscribed ones become Input
// transitions; those executed by the role itself additionally become
// Execute self-loops. With minimize set, the machine runs through subset
// construction and partition refinement.
func Project(g *protoinfo.Graph, initial graph.NodeID, subs swarm.Subscriptions, role swarm.Role, minimize bool) (*Graph, graph.NodeID) {
	m := graph.New[swarm.State, swarm.MachineLabel]()
	if initial == graph.NoNode {
		return m, graph.NoNode
	}
	sub := subs.Get(role)

	// Maps protocol nodes to their machine node, NoNode for states the
	// role cannot observe.
	mNodes := make([]graph.NodeID, g.NodeCount())
	for i := range mNodes {
		mNodes[i] = graph.NoNode
	}

	inProjection := func(n graph.NodeID) bool {
		if n == initial {
			return true
		}
		for _, e := range g.In(n) {
			if sub.Has(g.Label(e).Event) {
				return true
			}
		}
		return false
	}

	var nodesInProj []graph.NodeID
	for _, n := range g.NodeIDs() {
		if inProjection(n) {
			nodesInProj = append(nodesInProj, n)
			mNodes[n] = m.AddNode(g.State(n))
		}
	}

	// The interesting edges of a node are the subscribed edges reachable
	// by skipping over unsubscribed ones.
	interestingEdges := func(node graph.NodeID) []graph.EdgeID {
		stack := []graph.NodeID{node}
		visited := map[graph.NodeID]bool{node: true}
		var interesting []graph.EdgeID
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range g.Out(n) {
				if sub.Has(g.Label(e).Event) {
					interesting = append(interesting, e)
					continue
				}
				if dst := g.Target(e); !visited[dst] {
					visited[dst] = true
					stack = append(stack, dst)
				}
			}
		}
		return interesting
	}

	for _, node := range nodesInProj {
		for _, e := range interestingEdges(node) {
			label := g.Label(e)
			if label.Role == role {
				m.AddEdge(mNodes[node], mNodes[node], swarm.ExecuteLabel(label.Cmd, label.Event))
			}
			m.AddEdge(mNodes[node], mNodes[g.Target(e)], swarm.InputLabel(label.Event))
		}
	}

	if minimize {
		dfa, dfaInitial := NFAToDFA(m, mNodes[initial])
		return Minimal(dfa, dfaInitial)
	}
	return m, mNodes[initial]
}

// ChainedProjection is one link of a projected chain: the role's machine
// for one protocol plus the link's interface with earlier protocols.
type ChainedProjection struct {
	Graph     *Graph
	Initial   graph.NodeID
	Interface sets.Set[swarm.EventType]
}

// ProjectChain projects every protocol of the chain separately for role,
// carrying each link's interface along.
func ProjectChain(pi protoinfo.ProtoInfo, subs swarm.Subscriptions, role swarm.Role, minimize bool) []ChainedProjection {
	var out []ChainedProjection
	for _, link := range protoinfo.ChainInterfaces(pi) {
		proj, projInitial := Project(link.Graph, link.Initial, subs, role, minimize)
		out = append(out, ChainedProjection{Graph: proj, Initial: projInitial, Interface: link.Interface})
	}
	return out
}

// ProjectCombine projects each protocol of the chain separately and
// concatenates the projections left-to-right, synchronizing each link on
// the event types its role shares with the earlier links.
//
// Minimization applies to the per-protocol projections only; the combined
// machine keeps its composed state names.
func ProjectCombine(pi protoinfo.ProtoInfo, subs swarm.Subscriptions, role swarm.Role, minimize bool) (*Graph, graph.NodeID) {
	for _, p := range pi.Protocols {
		if p.Initial == graph.NoNode {
			return graph.New[swarm.State, swarm.MachineLabel](), graph.NoNode
		}
	}
	projections := ProjectChain(pi, subs, role, minimize)
	if len(projections) == 0 {
		return graph.New[swarm.State, swarm.MachineLabel](), graph.NoNode
	}
	acc, accInitial := projections[0].Graph, projections[0].Initial
	for _, link := range projections[1:] {
		acc, accInitial = compose.Compose(acc, accInitial, link.Graph, link.Initial, link.Interface, compose.StateNamePair)
	}
	return acc, accInitial
}
