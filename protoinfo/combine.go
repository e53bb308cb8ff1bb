package protoinfo

import (
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// FromProtocols prepares every protocol of a chain, combines the results,
// and runs the intra-protocol confusion-freeness checks. This is the
// entry point every operation uses to obtain chain-level analysis data.
func FromProtocols(protos []swarm.SwarmProtocol) ProtoInfo {
	combined := Combine(PrepareAll(protos))
	withConfusionChecks(&combined)
	return combined
}

// Combine folds a chain of per-protocol infos left-to-right, then derives
// the joining-event map once over the combined data.
func Combine(infos []ProtoInfo) ProtoInfo {
	if len(infos) == 0 {
		return newEmpty()
	}
	acc := infos[0]
	for _, next := range infos[1:] {
		acc = combineTwo(acc, next)
	}
	acc.JoiningEvents = joiningEventMap(acc)
	return acc
}

func combineTwo(a, b ProtoInfo) ProtoInfo {
	interfaceIssues := checkInterface(a, b)
	pairInterface := interfacingEventTypes(a, b)

	out := newEmpty()
	out.Protocols = append(append([]ProtoStruct{}, a.Protocols...), b.Protocols...)

	for role, labels := range a.RoleEventMap {
		out.RoleEventMap[role] = labels.Clone()
	}
	for role, labels := range b.RoleEventMap {
		if set, ok := out.RoleEventMap[role]; ok {
			set.AddAll(labels)
		} else {
			out.RoleEventMap[role] = labels.Clone()
		}
	}

	// Concurrency is overapproximated: anything from different protocols
	// that is not interfacing may occur in either order.
	out.ConcurrentEvents = a.ConcurrentEvents.Union(b.ConcurrentEvents)
	eventsA := a.EventTypes().Difference(pairInterface)
	eventsB := b.EventTypes().Difference(pairInterface)
	for x := range eventsA {
		for y := range eventsB {
			out.ConcurrentEvents.Add(swarm.PairOf(x, y))
		}
	}

	out.BranchingEvents = append(append([]sets.Set[swarm.EventType]{}, a.BranchingEvents...), b.BranchingEvents...)
	out.ImmediatelyPre = unionEventMap(a.ImmediatelyPre, b.ImmediatelyPre)
	out.SucceedingEvents = unionEventMap(a.SucceedingEvents, b.SucceedingEvents)

	out.InterfacingEvents = a.InterfacingEvents.Union(b.InterfacingEvents)
	out.InterfacingEvents.AddAll(pairInterface)

	out.InfinitelyLooping = a.InfinitelyLooping.Union(b.InfinitelyLooping)

	merged := newCollectorFrom(a.InterfaceResult, b.InterfaceResult)
	merged.CollectAll(interfaceIssues)
	out.InterfaceResult = merged.Result()
	return out
}

// interfacingRoles returns the roles appearing in both chains.
func interfacingRoles(a, b ProtoInfo) sets.Set[swarm.Role] {
	rolesA := sets.New[swarm.Role]()
	for _, p := range a.Protocols {
		rolesA.AddAll(p.Roles)
	}
	rolesB := sets.New[swarm.Role]()
	for _, p := range b.Protocols {
		rolesB.AddAll(p.Roles)
	}
	return rolesA.Intersect(rolesB)
}

// interfacingEventTypes returns the event types emitted by interfacing
// roles on either side.
func interfacingEventTypes(a, b ProtoInfo) sets.Set[swarm.EventType] {
	out := sets.New[swarm.EventType]()
	for role := range interfacingRoles(a, b) {
		for _, m := range []map[swarm.Role]sets.Set[swarm.LabelTriple]{a.RoleEventMap, b.RoleEventMap} {
			for triple := range m[role] {
				out.Add(triple.Event)
			}
		}
	}
	return out
}

// joiningEventMap maps each interfacing event type to the flattened
// concurrent pairs among its immediately-preceding events. Event types
// without such pairs are not joins and get no entry.
func joiningEventMap(pi ProtoInfo) map[swarm.EventType]sets.Set[swarm.EventType] {
	joining := make(map[swarm.EventType]sets.Set[swarm.EventType])
	for _, t := range pi.InterfacingEvents.Sorted() {
		pre, ok := pi.ImmediatelyPre[t]
		if !ok {
			continue
		}
		flat := sets.New[swarm.EventType]()
		sorted := pre.Sorted()
		for i, e1 := range sorted {
			for _, e2 := range sorted[i+1:] {
				if pi.ConcurrentEvents.Has(swarm.PairOf(e1, e2)) {
					flat.Add(e1)
					flat.Add(e2)
				}
			}
		}
		if flat.Len() > 0 {
			joining[t] = flat
		}
	}
	return joining
}

func unionEventMap(a, b map[swarm.EventType]sets.Set[swarm.EventType]) map[swarm.EventType]sets.Set[swarm.EventType] {
	out := make(map[swarm.EventType]sets.Set[swarm.EventType], len(a)+len(b))
	for t, set := range a {
		out[t] = set.Clone()
	}
	for t, set := range b {
		if existing, ok := out[t]; ok {
			existing.AddAll(set)
		} else {
			out[t] = set.Clone()
		}
	}
	return out
}
