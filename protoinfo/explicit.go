package protoinfo

import (
	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/graph/compose"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// ChainedProto is one link of a protocol chain: its graph, initial node,
// and the event types interfacing with the union of all earlier links.
type ChainedProto struct {
	Graph     *Graph
	Initial   graph.NodeID
	Interface sets.Set[swarm.EventType]
}

// ChainInterfaces walks the chain left-to-right, pairing each protocol
// with the event types of the roles it shares with the union of the
// preceding protocols. The first link's interface is empty.
func ChainInterfaces(pi ProtoInfo) []ChainedProto {
	var chained []ChainedProto
	rolesPrev := sets.New[swarm.Role]()
	for _, p := range pi.Protocols {
		iface := sets.New[swarm.EventType]()
		for role := range rolesPrev.Intersect(p.Roles) {
			for triple := range pi.RoleEventMap[role] {
				iface.Add(triple.Event)
			}
		}
		chained = append(chained, ChainedProto{Graph: p.Graph, Initial: p.Initial, Interface: iface})
		rolesPrev.AddAll(p.Roles)
	}
	return chained
}

// ExplicitComposition replaces the chain with its expanded synchronized
// product as the single protocol, recomputing the succeeds-relation and
// the infinitely-looping events on the composed state space. All other
// derived data is preserved from the chain.
//
// When the chain is empty or any protocol lacks a known initial state, the
// result carries no protocols; downstream phases treat that as the empty
// composition.
func ExplicitComposition(pi ProtoInfo) ProtoInfo {
	out := pi
	out.Protocols = nil

	if len(pi.Protocols) == 0 {
		return out
	}
	for _, p := range pi.Protocols {
		if p.Initial == graph.NoNode {
			return out
		}
	}

	chained := ChainInterfaces(pi)
	g, initial := chained[0].Graph, chained[0].Initial
	for _, link := range chained[1:] {
		g, initial = compose.Compose(g, initial, link.Graph, link.Initial, link.Interface, compose.StateNamePair)
	}

	roles := sets.New[swarm.Role]()
	for _, p := range pi.Protocols {
		roles.AddAll(p.Roles)
	}
	out.Protocols = []ProtoStruct{{Graph: g, Initial: initial, Result: diag.OK(), Roles: roles}}
	out.SucceedingEvents = succeedingEvents(g, pi.ConcurrentEvents)
	out.InfinitelyLooping = infinitelyLoopingEvents(g, out.SucceedingEvents)
	return out
}

// ComposeProtocols ingests, checks and expands a chain into one protocol
// graph. The report is non-OK when ingest, confusion or interface checks
// failed; the graph is nil in that case.
func ComposeProtocols(protos []swarm.SwarmProtocol) (*Graph, graph.NodeID, diag.Report) {
	pi := FromProtocols(protos)
	if !pi.NoErrors() {
		return nil, graph.NoNode, pi.Report()
	}
	composed := ExplicitComposition(pi)
	if len(composed.Protocols) == 0 {
		empty := graph.New[swarm.State, swarm.SwarmLabel]()
		return empty, graph.NoNode, diag.Report{}
	}
	return composed.Protocols[0].Graph, composed.Protocols[0].Initial, diag.Report{}
}
