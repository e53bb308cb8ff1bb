package subscription

import (
	"fmt"

	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// Granularity controls how aggressively the overapproximating solver
// fires the determinacy rules.
type Granularity uint8

const (
	// Fine applies the exact rules over chain data.
	Fine Granularity = iota

	// Medium additionally closes branch-event subscriptions under the
	// succeeds-relation restricted to branching events.
	Medium

	// Coarse gives every involved role all event types enabled at a
	// branching state, not only those in the current branch group.
	Coarse

	// TwoStep runs Coarse, then one Fine refinement kept only when it
	// still passes the well-formedness check.
	TwoStep
)

// String returns the wire name of the granularity.
func (g Granularity) String() string {
	switch g {
	case Fine:
		return "Fine"
	case Medium:
		return "Medium"
	case Coarse:
		return "Coarse"
	case TwoStep:
		return "TwoStep"
	default:
		return "unknown"
	}
}

// ParseGranularity parses a wire granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "Fine":
		return Fine, nil
	case "Medium":
		return Medium, nil
	case "Coarse":
		return Coarse, nil
	case "TwoStep":
		return TwoStep, nil
	default:
		return Fine, fmt.Errorf("unknown granularity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (g Granularity) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Granularity) UnmarshalText(b []byte) error {
	parsed, err := ParseGranularity(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// OverapproxWellFormedSub computes a well-formed subscription extending
// seed without expanding the composition: the rules run over the
// un-expanded chain, whose succeeds-relation and concurrency sets
// overapproximate the composed state space. The result is a pointwise
// superset of the exact subscription and always passes the
// well-formedness check.
func OverapproxWellFormedSub(protos []swarm.SwarmProtocol, seed swarm.Subscriptions, granularity Granularity) (swarm.Subscriptions, diag.Report) {
	combined := protoinfo.FromProtocols(protos)
	if !combined.NoErrors() {
		return nil, combined.Report()
	}
	return overapproxSub(combined, seed, granularity), diag.Report{}
}

func overapproxSub(pi protoinfo.ProtoInfo, seed swarm.Subscriptions, granularity Granularity) swarm.Subscriptions {
	if granularity == TwoStep {
		// Coarse first, then a Fine refinement from the same seed; the
		// refinement wins only when the chain-level data is strong enough
		// for it to check out.
		coarse := overapproxSub(pi, seed, Coarse)
		fine := overapproxSub(pi, seed, Fine)
		if len(CheckChain(pi, fine)) == 0 {
			return fine
		}
		return coarse
	}

	subs := seed.Clone()
	if subs == nil {
		subs = swarm.NewSubscriptions()
	}
	for !overapproxStep(pi, subs, granularity) {
	}
	addLoopingEventTypes(pi, subs)
	return subs
}

// overapproxStep applies the rules to every edge of every protocol of the
// chain once and reports whether the subscription was already stable.
func overapproxStep(pi protoinfo.ProtoInfo, subs swarm.Subscriptions, granularity Granularity) bool {
	stable := true
	for _, p := range pi.Protocols {
		if p.Initial == graph.NoNode {
			continue
		}
		g := p.Graph
		for _, node := range g.DFS(p.Initial) {
			for _, e := range g.Out(node) {
				label := g.Label(e)
				t := label.Event

				if subs.Add(label.Role, t) {
					stable = false
				}
				for _, active := range activeNotConcurrent(g, g.Target(e), t, pi.ConcurrentEvents) {
					if subs.Add(active.Role, t) {
						stable = false
					}
				}

				involved := pi.RolesOnPath(t, subs)

				branching := branchEventsFor(pi, g, node, t, granularity)
				if branching.Len() > 1 {
					for _, r := range involved.Sorted() {
						if subs.AddSet(r, branching) {
							stable = false
						}
					}
				}

				// Joins come straight from the chain's joining-event map;
				// the pre-sets there already flatten the concurrent pairs.
				if pre, ok := pi.JoiningEvents[t]; ok {
					toAdd := joinRequired(pi, t, pre)
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
	}
	return stable
}

// branchEventsFor returns the branch events rule additions at node for
// the given granularity.
func branchEventsFor(pi protoinfo.ProtoInfo, g *protoinfo.Graph, node graph.NodeID, t swarm.EventType, granularity Granularity) sets.Set[swarm.EventType] {
	switch granularity {
	case Coarse:
		// Every event enabled at a branching state, regardless of t's
		// branch group.
		atNode := sets.New[swarm.EventType]()
		targets := make(map[graph.NodeID]bool)
		for _, e := range g.Out(node) {
			atNode.Add(g.Label(e).Event)
			targets[g.Target(e)] = true
		}
		if len(targets) < 2 {
			return sets.New[swarm.EventType]()
		}
		return atNode
	case Medium:
		group := branchingThisNode(pi, g, node, t)
		if group.Len() < 2 {
			return group
		}
		// Close under the succeeds-relation, restricted to events that
		// are themselves branching somewhere in the chain.
		allBranching := sets.New[swarm.EventType]()
		for _, set := range pi.BranchingEvents {
			allBranching.AddAll(set)
		}
		closed := group.Clone()
		for b := range group {
			if succ, ok := pi.SucceedingEvents[b]; ok {
				closed.AddAll(succ.Intersect(allBranching))
			}
		}
		return closed
	default:
		return branchingThisNode(pi, g, node, t)
	}
}

// joinRequired filters a joining pre-set against concurrency with t and
// attaches t itself.
func joinRequired(pi protoinfo.ProtoInfo, t swarm.EventType, pre sets.Set[swarm.EventType]) sets.Set[swarm.EventType] {
	toAdd := sets.New[swarm.EventType]()
	for e := range pre {
		if !pi.ConcurrentEvents.Has(swarm.PairOf(e, t)) {
			toAdd.Add(e)
		}
	}
	if toAdd.Len() > 0 {
		toAdd.Add(t)
	}
	return toAdd
}
