package machine

import (
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// PathsFromEventTypes explains, per input event type of a projection,
// which event types can follow before the next branching or joining
// event. Events concurrent with the input are excluded, except that
// pairs already ordered by the succeeds-relation do not count as
// concurrent: the chain-level concurrency overapproximation may contain
// pairs the composition actually orders.
func PathsFromEventTypes(proj *Graph, pi protoinfo.ProtoInfo) map[swarm.EventType][]swarm.EventType {
	special := pi.BranchingJoining()

	afterPairs := sets.New[swarm.UnorderedEventPair]()
	for t, succ := range protoinfo.TransitiveClosure(pi.SucceedingEvents) {
		for u := range succ {
			afterPairs.Add(swarm.PairOf(t, u))
		}
	}
	concurrent := pi.ConcurrentEvents.Difference(afterPairs)

	acc := make(map[swarm.EventType]sets.Set[swarm.EventType])
	for _, n := range proj.NodeIDs() {
		for _, e := range proj.Out(n) {
			label := proj.Label(e)
			if label.Kind != swarm.Input {
				continue
			}
			t := label.Event
			found := followUntilSpecial(proj, proj.Target(e), t, special, concurrent)
			if set, ok := acc[t]; ok {
				set.AddAll(found)
			} else {
				acc[t] = found
			}
		}
	}

	out := make(map[swarm.EventType][]swarm.EventType, len(acc))
	for t, set := range acc {
		out[t] = set.Sorted()
	}
	return out
}

// followUntilSpecial collects the event types reachable from start
// without crossing a special event, skipping events concurrent with t.
func followUntilSpecial(proj *Graph, start graph.NodeID, t swarm.EventType, special sets.Set[swarm.EventType], concurrent sets.Set[swarm.UnorderedEventPair]) sets.Set[swarm.EventType] {
	found := sets.New[swarm.EventType]()
	visited := map[graph.NodeID]bool{start: true}
	stack := []graph.NodeID{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range proj.Out(n) {
			event := proj.Label(e).EventType()
			if !concurrent.Has(swarm.PairOf(event, t)) {
				found.Add(event)
			}
			if dst := proj.Target(e); !special.Has(event) && !visited[dst] {
				visited[dst] = true
				stack = append(stack, dst)
			}
		}
	}
	return found
}
