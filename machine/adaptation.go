package machine

import (
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/graph/compose"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// overlayNode is the node payload of an adaptation overlay: a composed
// state plus the states of the user machine it contains. A nil set means
// the node carries no share of the machine.
type overlayNode struct {
	state         swarm.State
	machineStates sets.Set[swarm.State]
}

func (n overlayNode) StateName() swarm.State { return n.state }

// mergeOverlay merges composed node payloads: names pair up as "a || b",
// machine-state sets intersect when both sides carry one and propagate
// when only one does.
func mergeOverlay(a, b overlayNode) overlayNode {
	name := swarm.NewState(a.state.String() + " || " + b.state.String())
	switch {
	case a.machineStates == nil && b.machineStates == nil:
		return overlayNode{state: name}
	case a.machineStates == nil:
		return overlayNode{state: name, machineStates: b.machineStates}
	case b.machineStates == nil:
		return overlayNode{state: name, machineStates: a.machineStates}
	default:
		return overlayNode{state: name, machineStates: a.machineStates.Intersect(b.machineStates)}
	}
}

type overlayGraph = graph.Graph[overlayNode, swarm.MachineLabel]

// edgeEvents collects the event types on the edges of a machine graph.
func edgeEvents[N graph.Node](g *graph.Graph[N, swarm.MachineLabel]) sets.Set[swarm.EventType] {
	out := sets.New[swarm.EventType]()
	for _, e := range g.EdgeIDs() {
		out.Add(g.Label(e).EventType())
	}
	return out
}

// adaptedProjection overlays the user machine onto the k-th projection of
// the chain and re-composes the whole chain. The overlay synchronizes on
// the event types common to the machine and the k-th projection, not on
// the chain interface; the chain interfaces drive the outer composition
// as usual.
func adaptedProjection(pi protoinfo.ProtoInfo, subs swarm.Subscriptions, role swarm.Role, m *Graph, mInitial graph.NodeID, k int, minimize bool) (*overlayGraph, graph.NodeID, bool) {
	if len(pi.Protocols) == 0 || k < 0 || k >= len(pi.Protocols) {
		return nil, graph.NoNode, false
	}
	for _, p := range pi.Protocols {
		if p.Initial == graph.NoNode {
			return nil, graph.NoNode, false
		}
	}

	type leg struct {
		graph   *overlayGraph
		initial graph.NodeID
		iface   sets.Set[swarm.EventType]
	}
	var legs []leg
	for _, link := range ProjectChain(pi, subs, role, minimize) {
		overlay := graph.MapNodes(link.Graph, func(s swarm.State) overlayNode {
			return overlayNode{state: s}
		})
		legs = append(legs, leg{graph: overlay, initial: link.Initial, iface: link.Interface})
	}

	machineOverlay := graph.MapNodes(m, func(s swarm.State) overlayNode {
		return overlayNode{state: s, machineStates: sets.New(s)}
	})
	syncOn := edgeEvents(m).Intersect(edgeEvents(legs[k].graph))

	composed, composedInitial := compose.Compose(
		machineOverlay, mInitial, legs[k].graph, legs[k].initial, syncOn, mergeOverlay)
	composed = graph.MapNodes(composed, func(n overlayNode) overlayNode {
		return overlayNode{
			state:         swarm.NewState("(" + n.state.String() + ")"),
			machineStates: n.machineStates,
		}
	})
	legs[k] = leg{graph: composed, initial: composedInitial, iface: legs[k].iface}

	acc, accInitial := legs[0].graph, legs[0].initial
	for _, l := range legs[1:] {
		acc, accInitial = compose.Compose(acc, accInitial, l.graph, l.initial, l.iface, mergeOverlay)
	}
	return acc, accInitial, true
}

// ProjectionInfo explains an adapted projection: the machine itself, the
// event types following each input before the next branch or join, the
// special (branching or joining) event types, and the mapping from
// projection states to the user machine states they contain.
type ProjectionInfo struct {
	Projection          swarm.Machine                         `json:"projection"`
	Branches            map[swarm.EventType][]swarm.EventType `json:"branches"`
	SpecialEventTypes   []swarm.EventType                     `json:"specialEventTypes"`
	ProjToMachineStates map[swarm.State][]swarm.State         `json:"projToMachineStates"`
}

// ProjectionInformation overlays the user machine (m, mInitial) onto the
// k-th protocol of the chain, re-composes, and explains the result.
// Returns false when the chain is empty, k is out of range, or a protocol
// has no known initial state.
func ProjectionInformation(pi protoinfo.ProtoInfo, subs swarm.Subscriptions, role swarm.Role, m *Graph, mInitial graph.NodeID, k int, minimize bool) (*ProjectionInfo, bool) {
	overlay, initial, ok := adaptedProjection(pi, subs, role, m, mInitial, k, minimize)
	if !ok {
		return nil, false
	}

	projToMachine := make(map[swarm.State][]swarm.State)
	for _, n := range overlay.NodeIDs() {
		payload := overlay.Node(n)
		states := []swarm.State{}
		if payload.machineStates != nil {
			states = payload.machineStates.Sorted()
		}
		projToMachine[payload.state] = states
	}

	projection := graph.MapNodes(overlay, func(n overlayNode) swarm.State { return n.state })

	return &ProjectionInfo{
		Projection:          ToWire(projection, initial),
		Branches:            PathsFromEventTypes(projection, pi),
		SpecialEventTypes:   pi.BranchingJoining().Sorted(),
		ProjToMachineStates: projToMachine,
	}, true
}
