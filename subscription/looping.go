package subscription

import (
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// addLoopingEventTypes closes a stabilized subscription over the
// infinitely-looping events: for each event type t on a cycle that cannot
// reach a terminal state, unless some event of {t} ∪ succeeding(t) is
// already subscribed by every involved role, t is added to all of them.
// Shared by the exact and the overapproximating solver.
func addLoopingEventTypes(pi protoinfo.ProtoInfo, subs swarm.Subscriptions) {
	for _, t := range pi.InfinitelyLooping.Sorted() {
		tAndAfter := pi.SucceedingIncludingSelf(t)
		involved := pi.RolesOnPath(t, subs)
		if allRolesSubToSame(tAndAfter, involved, subs) {
			continue
		}
		for _, r := range involved.Sorted() {
			subs.Add(r, t)
		}
	}
}

// allRolesSubToSame reports whether some event type in events is
// subscribed by every role in roles.
func allRolesSubToSame(events sets.Set[swarm.EventType], roles sets.Set[swarm.Role], subs swarm.Subscriptions) bool {
	for t := range events {
		all := true
		for r := range roles {
			if !subs.Contains(r, t) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
