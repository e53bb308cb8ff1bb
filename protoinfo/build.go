package protoinfo

import (
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// Prepare ingests one protocol and derives its local analysis data: the
// role/event map, branch groups, immediately-preceding events, the
// transitive succeeds-relation, and infinitely-looping events. The
// concurrency relation of a single protocol is empty.
func Prepare(proto swarm.SwarmProtocol) ProtoInfo {
	return buildInfo(Ingest(proto))
}

// PrepareAll prepares each protocol of a chain independently.
func PrepareAll(protos []swarm.SwarmProtocol) []ProtoInfo {
	out := make([]ProtoInfo, len(protos))
	for i, p := range protos {
		out[i] = Prepare(p)
	}
	return out
}

func buildInfo(ps ProtoStruct) ProtoInfo {
	info := newEmpty()
	info.Protocols = []ProtoStruct{ps}
	g := ps.Graph

	for _, e := range g.EdgeIDs() {
		label := g.Label(e)
		set, ok := info.RoleEventMap[label.Role]
		if !ok {
			set = sets.New[swarm.LabelTriple]()
			info.RoleEventMap[label.Role] = set
		}
		set.Add(label.Triple())
	}

	info.BranchingEvents = branchGroups(g)
	info.ImmediatelyPre = immediatelyPre(g)
	info.SucceedingEvents = succeedingEvents(g, info.ConcurrentEvents)
	info.InfinitelyLooping = infinitelyLoopingEvents(g, info.SucceedingEvents)
	return info
}

// branchGroups returns, per node with transitions to at least two distinct
// targets, the set of event types on its outgoing edges. Nodes whose
// outgoing transitions all share one target are not branch points: no
// choice is observable there.
func branchGroups(g *Graph) []sets.Set[swarm.EventType] {
	var groups []sets.Set[swarm.EventType]
	for _, n := range g.NodeIDs() {
		out := g.Out(n)
		if len(out) < 2 {
			continue
		}
		targets := make(map[graph.NodeID]bool, len(out))
		group := sets.New[swarm.EventType]()
		for _, e := range out {
			targets[g.Target(e)] = true
			group.Add(g.Label(e).Event)
		}
		if len(targets) >= 2 {
			groups = append(groups, group)
		}
	}
	return groups
}

// immediatelyPre maps each event type to the event types on incoming
// edges of its source state.
func immediatelyPre(g *Graph) map[swarm.EventType]sets.Set[swarm.EventType] {
	pre := make(map[swarm.EventType]sets.Set[swarm.EventType])
	for _, e := range g.EdgeIDs() {
		t := g.Label(e).Event
		incoming := g.In(g.Source(e))
		if len(incoming) == 0 {
			continue
		}
		set, ok := pre[t]
		if !ok {
			set = sets.New[swarm.EventType]()
			pre[t] = set
		}
		for _, in := range incoming {
			set.Add(g.Label(in).Event)
		}
	}
	return pre
}

// succeedingEvents computes the transitive succeeds-relation: u succeeds t
// when some edge labeled u is reachable from the target of an edge labeled
// t and u is not concurrent with t. On a composed state space, events
// concurrent with t appear on interleaved paths after t without being
// causally after it; the concurrency filter keeps them out. Cycles are
// handled by condensing the graph into strongly connected components and
// propagating reachable event sets over the condensation.
func succeedingEvents(g *Graph, concurrent sets.Set[swarm.UnorderedEventPair]) map[swarm.EventType]sets.Set[swarm.EventType] {
	sccs := g.SCCs()
	comp := make([]int, g.NodeCount())
	for i, scc := range sccs {
		for _, n := range scc {
			comp[n] = i
		}
	}

	// SCCs arrive in reverse topological order: every successor component
	// is computed before its predecessors.
	reach := make([]sets.Set[swarm.EventType], len(sccs))
	for i, scc := range sccs {
		r := sets.New[swarm.EventType]()
		for _, n := range scc {
			for _, e := range g.Out(n) {
				r.Add(g.Label(e).Event)
				if dst := comp[g.Target(e)]; dst != i {
					r.AddAll(reach[dst])
				}
			}
		}
		reach[i] = r
	}

	succ := make(map[swarm.EventType]sets.Set[swarm.EventType])
	for _, e := range g.EdgeIDs() {
		t := g.Label(e).Event
		after := reach[comp[g.Target(e)]]
		if after.Len() == 0 {
			continue
		}
		set, ok := succ[t]
		if !ok {
			set = sets.New[swarm.EventType]()
			succ[t] = set
		}
		for u := range after {
			if !concurrent.Has(swarm.PairOf(t, u)) {
				set.Add(u)
			}
		}
		if set.Len() == 0 {
			delete(succ, t)
		}
	}
	return succ
}

// infinitelyLoopingEvents returns the event types on edges leaving states
// that cannot reach a terminal state, restricted to events that succeed
// themselves.
func infinitelyLoopingEvents(g *Graph, succ map[swarm.EventType]sets.Set[swarm.EventType]) sets.Set[swarm.EventType] {
	out := sets.New[swarm.EventType]()
	reaching := g.NodesReachingTerminal()
	for _, n := range g.NodeIDs() {
		if reaching[n] {
			continue
		}
		for _, e := range g.Out(n) {
			t := g.Label(e).Event
			if s, ok := succ[t]; ok && s.Has(t) {
				out.Add(t)
			}
		}
	}
	return out
}
