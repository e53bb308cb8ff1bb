package subscription

import (
	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// ExactWellFormedSub computes the least well-formed subscription extending
// seed, by expanding the chain into its explicit composition and applying
// the causal-consistency and determinacy rules until the subscription
// stabilizes.
//
// When ingest, confusion or interface checks fail the returned report is
// non-OK and the subscription is nil.
func ExactWellFormedSub(protos []swarm.SwarmProtocol, seed swarm.Subscriptions) (swarm.Subscriptions, diag.Report) {
	combined := protoinfo.FromProtocols(protos)
	if !combined.NoErrors() {
		return nil, combined.Report()
	}
	composition := protoinfo.ExplicitComposition(combined)
	return exactSub(composition, seed), diag.Report{}
}

// WellFormedSub is [ExactWellFormedSub] for a single protocol.
func WellFormedSub(proto swarm.SwarmProtocol, seed swarm.Subscriptions) (swarm.Subscriptions, diag.Report) {
	return ExactWellFormedSub([]swarm.SwarmProtocol{proto}, seed)
}

// exactSub iterates the well-formedness rules over the explicit
// composition until no rule adds a subscription, then applies the looping
// closure.
func exactSub(pi protoinfo.ProtoInfo, seed swarm.Subscriptions) swarm.Subscriptions {
	p, ok := pi.Proto(0)
	if !ok || p.Initial == graph.NoNode {
		return swarm.NewSubscriptions()
	}

	subs := seed.Clone()
	if subs == nil {
		subs = swarm.NewSubscriptions()
	}
	for !exactStep(pi, p.Graph, p.Initial, subs) {
	}
	addLoopingEventTypes(pi, subs)
	return subs
}

// exactStep applies every rule to every edge once, in DFS order from the
// initial state, and reports whether the subscription was already stable.
func exactStep(pi protoinfo.ProtoInfo, g *protoinfo.Graph, initial graph.NodeID, subs swarm.Subscriptions) bool {
	if g.NodeCount() == 0 {
		return true
	}
	stable := true
	for _, node := range g.DFS(initial) {
		for _, e := range g.Out(node) {
			label := g.Label(e)
			t := label.Event

			// Causal consistency 1: roles subscribe to the event types
			// they emit.
			if subs.Add(label.Role, t) {
				stable = false
			}

			// Causal consistency 2: roles subscribe to the event types
			// that immediately precede their own commands.
			for _, active := range activeNotConcurrent(g, g.Target(e), t, pi.ConcurrentEvents) {
				if subs.Add(active.Role, t) {
					stable = false
				}
			}

			involved := pi.RolesOnPath(t, subs)

			// Determinacy 1: involved roles subscribe to the branching
			// events enabled together with t. A single branching event at
			// a node is no observable choice; composition can lose the
			// sibling behavior to concurrency.
			branching := branchingThisNode(pi, g, node, t)
			if branching.Len() > 1 {
				for _, r := range involved.Sorted() {
					if subs.AddSet(r, branching) {
						stable = false
					}
				}
			}

			// Determinacy 2: joining events. Every joining event type is
			// interfacing, but not the other way around, so inspect the
			// incoming concurrent pairs not concurrent with t.
			if pi.InterfacingEvents.Has(t) {
				toAdd := joinEvents(pi, g, node, t)
				if toAdd.Len() > 0 {
					for _, r := range involved.Sorted() {
						if subs.AddSet(r, toAdd) {
							stable = false
						}
					}
				}
			}
		}
	}
	return stable
}

// activeNotConcurrent returns the labels going out of node whose event is
// not concurrent with t.
func activeNotConcurrent(g *protoinfo.Graph, node graph.NodeID, t swarm.EventType, concurrent sets.Set[swarm.UnorderedEventPair]) []swarm.SwarmLabel {
	var out []swarm.SwarmLabel
	for _, e := range g.Out(node) {
		label := g.Label(e)
		if !concurrent.Has(swarm.PairOf(t, label.Event)) {
			out = append(out, label)
		}
	}
	return out
}

// branchingThisNode returns the event types emitted at node that branch
// together with t.
func branchingThisNode(pi protoinfo.ProtoInfo, g *protoinfo.Graph, node graph.NodeID, t swarm.EventType) sets.Set[swarm.EventType] {
	group := sets.New[swarm.EventType]()
	for _, set := range pi.BranchingEvents {
		if set.Has(t) {
			group.AddAll(set)
		}
	}
	atNode := sets.New[swarm.EventType]()
	for _, e := range g.Out(node) {
		if event := g.Label(e).Event; group.Has(event) {
			atNode.Add(event)
		}
	}
	return atNode
}

// joinEvents returns the event types a join at node forces on involved
// roles: the members of incoming event pairs that are concurrent with
// each other but neither concurrent with t, plus t itself. Empty when no
// such pair exists.
func joinEvents(pi protoinfo.ProtoInfo, g *protoinfo.Graph, node graph.NodeID, t swarm.EventType) sets.Set[swarm.EventType] {
	toAdd := sets.New[swarm.EventType]()
	incoming := g.In(node)
	for i := 0; i < len(incoming); i++ {
		for j := i + 1; j < len(incoming); j++ {
			a := g.Label(incoming[i]).Event
			b := g.Label(incoming[j]).Event
			if !pi.ConcurrentEvents.Has(swarm.PairOf(a, b)) {
				continue
			}
			if pi.ConcurrentEvents.Has(swarm.PairOf(a, t)) || pi.ConcurrentEvents.Has(swarm.PairOf(b, t)) {
				continue
			}
			toAdd.Add(a)
			toAdd.Add(b)
		}
	}
	if toAdd.Len() > 0 {
		toAdd.Add(t)
	}
	return toAdd
}
