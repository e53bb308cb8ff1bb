package protoinfo

import (
	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// Graph is the concrete protocol graph: states on nodes, swarm labels on
// edges.
type Graph = graph.Graph[swarm.State, swarm.SwarmLabel]

// ProtoStruct bundles one ingested protocol: its graph, the initial node
// ([graph.NoNode] when the declared initial state is disconnected), the
// issues found so far, and the roles appearing on its transitions.
type ProtoStruct struct {
	Graph   *Graph
	Initial graph.NodeID
	Result  diag.Result
	Roles   sets.Set[swarm.Role]
}

// NoErrors reports whether the protocol carries no error-severity issues.
func (p ProtoStruct) NoErrors() bool { return !p.Result.HasErrors() }

// ProtoInfo carries a protocol chain and all data derived from it across
// analysis phases. Values are built by [Prepare], [Combine] and
// [FromProtocols] and treated as immutable afterwards.
type ProtoInfo struct {
	// Protocols is the ordered chain; order matters for interface
	// derivation and for the adaptation index.
	Protocols []ProtoStruct

	// RoleEventMap maps each role to the labels it executes anywhere in
	// the chain.
	RoleEventMap map[swarm.Role]sets.Set[swarm.LabelTriple]

	// ConcurrentEvents overapproximates which event pairs may occur in
	// either order in the composition.
	ConcurrentEvents sets.Set[swarm.UnorderedEventPair]

	// BranchingEvents groups, per branching node, the event types labeling
	// its outgoing transitions.
	BranchingEvents []sets.Set[swarm.EventType]

	// JoiningEvents maps each joining event type to the concurrent event
	// types immediately preceding it.
	JoiningEvents map[swarm.EventType]sets.Set[swarm.EventType]

	// ImmediatelyPre maps each event type to the event types on incoming
	// transitions of its source state.
	ImmediatelyPre map[swarm.EventType]sets.Set[swarm.EventType]

	// SucceedingEvents is the transitive succeeds-relation. Local to each
	// protocol after [Combine]; recomputed on the composed state space by
	// [ExplicitComposition].
	SucceedingEvents map[swarm.EventType]sets.Set[swarm.EventType]

	// InterfacingEvents holds the event types owned by roles appearing in
	// more than one protocol of the chain.
	InterfacingEvents sets.Set[swarm.EventType]

	// InfinitelyLooping holds event types on cycles from which no terminal
	// state is reachable.
	InfinitelyLooping sets.Set[swarm.EventType]

	// InterfaceResult accumulates cross-protocol interface issues.
	InterfaceResult diag.Result
}

// newEmpty returns a ProtoInfo with every collection allocated.
func newEmpty() ProtoInfo {
	return ProtoInfo{
		RoleEventMap:      make(map[swarm.Role]sets.Set[swarm.LabelTriple]),
		ConcurrentEvents:  sets.New[swarm.UnorderedEventPair](),
		JoiningEvents:     make(map[swarm.EventType]sets.Set[swarm.EventType]),
		ImmediatelyPre:    make(map[swarm.EventType]sets.Set[swarm.EventType]),
		SucceedingEvents:  make(map[swarm.EventType]sets.Set[swarm.EventType]),
		InterfacingEvents: sets.New[swarm.EventType](),
		InfinitelyLooping: sets.New[swarm.EventType](),
	}
}

// Proto returns the i-th protocol of the chain and whether i is in range.
func (pi ProtoInfo) Proto(i int) (ProtoStruct, bool) {
	if i < 0 || i >= len(pi.Protocols) {
		return ProtoStruct{}, false
	}
	return pi.Protocols[i], true
}

// NoErrors reports whether no protocol and no interface check produced an
// error.
func (pi ProtoInfo) NoErrors() bool {
	for _, p := range pi.Protocols {
		if !p.NoErrors() {
			return false
		}
	}
	return !pi.InterfaceResult.HasErrors()
}

// Report collects the per-protocol results followed by the interface
// result, in pipeline order.
func (pi ProtoInfo) Report() diag.Report {
	var report diag.Report
	for _, p := range pi.Protocols {
		report.Add(p.Result)
	}
	report.Add(pi.InterfaceResult)
	return report
}

// Labels returns every (command, event type, role) triple of the chain.
func (pi ProtoInfo) Labels() sets.Set[swarm.LabelTriple] {
	out := sets.New[swarm.LabelTriple]()
	for _, labels := range pi.RoleEventMap {
		out.AddAll(labels)
	}
	return out
}

// EventTypes returns every event type of the chain.
func (pi ProtoInfo) EventTypes() sets.Set[swarm.EventType] {
	out := sets.New[swarm.EventType]()
	for triple := range pi.Labels() {
		out.Add(triple.Event)
	}
	return out
}

// EventTypeMap maps each event type to its (command, role) pair. With
// agreeing labels the pair is unique; under disagreement the
// lexicographically least triple wins, and the interface checks report
// the conflict.
func (pi ProtoInfo) EventTypeMap() map[swarm.EventType]swarm.LabelTriple {
	out := make(map[swarm.EventType]swarm.LabelTriple)
	for _, triple := range pi.Labels().Sorted() {
		if _, ok := out[triple.Event]; !ok {
			out[triple.Event] = triple
		}
	}
	return out
}

// CommandMap maps each command to its (event type, role) pair, mirroring
// [ProtoInfo.EventTypeMap].
func (pi ProtoInfo) CommandMap() map[swarm.Command]swarm.LabelTriple {
	out := make(map[swarm.Command]swarm.LabelTriple)
	for _, triple := range pi.Labels().Sorted() {
		if _, ok := out[triple.Cmd]; !ok {
			out[triple.Cmd] = triple
		}
	}
	return out
}

// SucceedingIncludingSelf returns {t} ∪ SucceedingEvents[t].
func (pi ProtoInfo) SucceedingIncludingSelf(t swarm.EventType) sets.Set[swarm.EventType] {
	out := sets.New(t)
	if succ, ok := pi.SucceedingEvents[t]; ok {
		out.AddAll(succ)
	}
	return out
}

// RolesOnPath returns the roles whose subscription intersects
// {t} ∪ succeeding(t): the roles involved at or after t.
func (pi ProtoInfo) RolesOnPath(t swarm.EventType, subs swarm.Subscriptions) sets.Set[swarm.Role] {
	tAndAfter := pi.SucceedingIncludingSelf(t)
	out := sets.New[swarm.Role]()
	for role, set := range subs {
		if set.Intersects(tAndAfter) {
			out.Add(role)
		}
	}
	return out
}

// BranchingJoining returns the union of all branch groups and all joining
// event types: the "special" events at which projection path explanations
// stop.
func (pi ProtoInfo) BranchingJoining() sets.Set[swarm.EventType] {
	out := sets.New[swarm.EventType]()
	for _, group := range pi.BranchingEvents {
		out.AddAll(group)
	}
	for t := range pi.JoiningEvents {
		out.Add(t)
	}
	return out
}

// FlattenJoining returns every joining event type together with its
// stored pre-sets, as a flat set.
func FlattenJoining(joining map[swarm.EventType]sets.Set[swarm.EventType]) sets.Set[swarm.EventType] {
	out := sets.New[swarm.EventType]()
	for t, pre := range joining {
		out.Add(t)
		out.AddAll(pre)
	}
	return out
}

// TransitiveClosure closes a successor relation under transitivity.
// The per-protocol relations are transitive already; the union across a
// chain is not, so callers needing cross-protocol reachability close it.
func TransitiveClosure(m map[swarm.EventType]sets.Set[swarm.EventType]) map[swarm.EventType]sets.Set[swarm.EventType] {
	out := make(map[swarm.EventType]sets.Set[swarm.EventType], len(m))
	for t, succ := range m {
		out[t] = succ.Clone()
	}
	for changed := true; changed; {
		changed = false
		for _, set := range out {
			for _, u := range set.Sorted() {
				if next, ok := out[u]; ok {
					if set.AddAll(next) {
						changed = true
					}
				}
			}
		}
	}
	return out
}
