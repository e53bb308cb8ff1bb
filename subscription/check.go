package subscription

import (
	"strings"

	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// CheckComposedSwarm verifies that subs discharges every well-formedness
// rule for the composition of protos, without expanding the composition.
// The report contains ingest, confusion and interface findings when those
// phases fail; the well-formedness findings otherwise.
func CheckComposedSwarm(protos []swarm.SwarmProtocol, subs swarm.Subscriptions) diag.Report {
	pi := protoinfo.FromProtocols(protos)
	if !pi.NoErrors() {
		return pi.Report()
	}
	return issuesReport(CheckChain(pi, subs))
}

// CheckSwarm verifies a single protocol against subs: structural and
// confusion checks first, then the causal-consistency rules plus the
// guard-determinism family that only makes sense without composition.
func CheckSwarm(proto swarm.SwarmProtocol, subs swarm.Subscriptions) diag.Report {
	pi := protoinfo.FromProtocols([]swarm.SwarmProtocol{proto})
	if !pi.NoErrors() {
		return pi.Report()
	}
	issues := CheckChain(pi, subs)
	if p, ok := pi.Proto(0); ok {
		issues = append(issues, checkGuards(pi, p, subs)...)
	}
	return issuesReport(issues)
}

func issuesReport(issues []diag.Issue) diag.Report {
	c := diag.NewCollector()
	c.CollectAll(issues)
	var report diag.Report
	report.Add(c.Result())
	return report
}

func eventList(events []swarm.EventType) string {
	names := make([]string, len(events))
	for i, t := range events {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

// CheckChain independently verifies the causal-consistency and determinacy
// rules over the un-expanded chain. Protocols without a known initial
// state are skipped; their ingest findings already explain why.
func CheckChain(pi protoinfo.ProtoInfo, subs swarm.Subscriptions) []diag.Issue {
	var issues []diag.Issue
	for _, p := range pi.Protocols {
		if p.Initial == graph.NoNode {
			continue
		}
		issues = append(issues, checkProtocol(pi, p, subs)...)
	}
	issues = append(issues, checkLooping(pi, subs)...)
	return issues
}

func checkProtocol(pi protoinfo.ProtoInfo, p protoinfo.ProtoStruct, subs swarm.Subscriptions) []diag.Issue {
	var issues []diag.Issue
	g := p.Graph
	for _, node := range g.DFS(p.Initial) {
		for _, e := range g.Out(node) {
			label := g.Label(e)
			t := label.Event

			// Causal consistency 1.
			if !subs.Contains(label.Role, t) {
				issues = append(issues, diag.NewIssue(diag.Error, diag.E_ACTIVE_ROLE_NOT_SUBSCRIBED,
					"active role does not subscribe to any of its emitted event types in transition "+g.EdgeString(e)).
					WithDetail(diag.DetailKeyRole, label.Role.String()).
					WithDetail(diag.DetailKeyTransition, g.EdgeString(e)).Build())
			}

			// Causal consistency 2.
			for _, active := range activeNotConcurrent(g, g.Target(e), t, pi.ConcurrentEvents) {
				if !subs.Contains(active.Role, t) {
					issues = append(issues, diag.NewIssue(diag.Error, diag.E_LATER_ACTIVE_ROLE_NOT_SUBSCRIBED,
						"subsequently active role "+active.Role.String()+" does not subscribe to events in transition "+g.EdgeString(e)).
						WithDetail(diag.DetailKeyRole, active.Role.String()).
						WithDetail(diag.DetailKeyTransition, g.EdgeString(e)).Build())
				}
			}

			involved := pi.RolesOnPath(t, subs)

			// Determinacy 1: branch groups.
			branching := branchingThisNode(pi, g, node, t)
			if branching.Len() > 1 {
				for _, r := range involved.Sorted() {
					have := subs.Get(r)
					missing := branching.Difference(have)
					if missing.Len() == 0 {
						continue
					}
					if !have.Intersects(branching) {
						issues = append(issues, diag.NewIssue(diag.Error, diag.E_LATER_INVOLVED_NOT_GUARDED,
							"subsequently involved role "+r.String()+" does not subscribe to guard in transition "+g.EdgeString(e)).
							WithDetail(diag.DetailKeyRole, r.String()).
							WithDetail(diag.DetailKeyTransition, g.EdgeString(e)).Build())
						continue
					}
					issues = append(issues, diag.NewIssue(diag.Error, diag.E_ROLE_NOT_SUBSCRIBED_TO_BRANCH,
						"role "+r.String()+" does not subscribe to event types "+eventList(missing.Sorted())+
							" in branching transitions at state "+g.State(node).String()+
							", but is involved after transition "+g.EdgeString(e)).
						WithDetail(diag.DetailKeyRole, r.String()).
						WithDetail(diag.DetailKeyEvents, eventList(missing.Sorted())).
						WithDetail(diag.DetailKeyState, g.State(node).String()).Build())
				}
			}

			// Determinacy 2: joins.
			if pi.InterfacingEvents.Has(t) {
				if required := joinRequiredFromPre(pi, t); required.Len() > 0 {
					for _, r := range involved.Sorted() {
						if subs.Get(r).HasAll(required) {
							continue
						}
						issues = append(issues, diag.NewIssue(diag.Error, diag.E_ROLE_NOT_SUBSCRIBED_TO_JOIN,
							"role "+r.String()+" does not subscribe to event types "+eventList(required.Sorted())+
								" leading to or in joining event in transition "+g.EdgeString(e)).
							WithDetail(diag.DetailKeyRole, r.String()).
							WithDetail(diag.DetailKeyEvents, eventList(required.Sorted())).
							WithDetail(diag.DetailKeyTransition, g.EdgeString(e)).Build())
					}
				}
			}
		}
	}
	return issues
}

// joinRequiredFromPre derives the join obligation of t from the chain's
// immediately-preceding events: members of pairs concurrent with each
// other but neither concurrent with t, plus t itself.
func joinRequiredFromPre(pi protoinfo.ProtoInfo, t swarm.EventType) sets.Set[swarm.EventType] {
	required := sets.New[swarm.EventType]()
	pre, ok := pi.ImmediatelyPre[t]
	if !ok {
		return required
	}
	sorted := pre.Sorted()
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			if !pi.ConcurrentEvents.Has(swarm.PairOf(a, b)) {
				continue
			}
			if pi.ConcurrentEvents.Has(swarm.PairOf(a, t)) || pi.ConcurrentEvents.Has(swarm.PairOf(b, t)) {
				continue
			}
			required.Add(a)
			required.Add(b)
		}
	}
	if required.Len() > 0 {
		required.Add(t)
	}
	return required
}

// checkLooping verifies that every infinite loop has an event type
// observed by all roles involved in it.
func checkLooping(pi protoinfo.ProtoInfo, subs swarm.Subscriptions) []diag.Issue {
	var issues []diag.Issue
	for _, t := range pi.InfinitelyLooping.Sorted() {
		involved := pi.RolesOnPath(t, subs)
		if involved.Len() == 0 {
			continue
		}
		if allRolesSubToSame(pi.SucceedingIncludingSelf(t), involved, subs) {
			continue
		}
		g, e := findEdge(pi, t)
		roleNames := make([]string, 0, involved.Len())
		for _, r := range involved.Sorted() {
			roleNames = append(roleNames, r.String())
		}
		ref := t.String()
		if g != nil {
			ref = g.EdgeString(e)
		}
		issues = append(issues, diag.NewIssue(diag.Error, diag.E_LOOPING_NOT_SUBSCRIBED,
			"transition "+ref+" is part of loop that can not reach a terminal state, but no looping event type in the loop is subscribed to by roles "+
				strings.Join(roleNames, ", ")+" involved in the loop").
			WithDetail(diag.DetailKeyEventType, t.String()).
			WithDetail(diag.DetailKeyRoles, strings.Join(roleNames, ", ")).Build())
	}
	return issues
}

// findEdge locates some edge of the chain emitting t, for rendering.
func findEdge(pi protoinfo.ProtoInfo, t swarm.EventType) (*protoinfo.Graph, graph.EdgeID) {
	for _, p := range pi.Protocols {
		for _, e := range p.Graph.EdgeIDs() {
			if p.Graph.Label(e).Event == t {
				return p.Graph, e
			}
		}
	}
	return nil, 0
}

// checkGuards runs the guard-determinism family that applies to a single
// protocol checked in isolation: deterministic guards and commands,
// guard invariance, and the subscription-shape conditions on
// subsequently involved roles.
func checkGuards(pi protoinfo.ProtoInfo, p protoinfo.ProtoStruct, subs swarm.Subscriptions) []diag.Issue {
	var issues []diag.Issue
	g := p.Graph

	// Guard invariance: an event type must not label transitions leaving
	// multiple states.
	sources := make(map[swarm.EventType]map[graph.NodeID]bool)
	for _, e := range g.EdgeIDs() {
		t := g.Label(e).Event
		if sources[t] == nil {
			sources[t] = make(map[graph.NodeID]bool)
		}
		sources[t][g.Source(e)] = true
	}
	for _, t := range sets.SortedKeys(sources) {
		if len(sources[t]) > 1 {
			issues = append(issues, diag.NewIssue(diag.Error, diag.E_GUARD_NOT_INVARIANT,
				"guard event type "+t.String()+" appears in transitions from multiple states").
				WithDetail(diag.DetailKeyEventType, t.String()).Build())
		}
	}

	for _, node := range g.DFS(p.Initial) {
		seenGuard := make(map[swarm.EventType]bool)
		seenCmd := make(map[swarm.Command]bool)
		for _, e := range g.Out(node) {
			label := g.Label(e)
			if seenGuard[label.Event] {
				issues = append(issues, diag.NewIssue(diag.Error, diag.E_NON_DETERMINISTIC_GUARD,
					"non-deterministic event guard type "+label.Event.String()+" in state "+g.State(node).String()).
					WithDetail(diag.DetailKeyEventType, label.Event.String()).
					WithDetail(diag.DetailKeyState, g.State(node).String()).Build())
			}
			seenGuard[label.Event] = true
			if seenCmd[label.Cmd] {
				issues = append(issues, diag.NewIssue(diag.Error, diag.E_NON_DETERMINISTIC_COMMAND,
					"non-deterministic command "+label.Cmd.String()+" for role "+label.Role.String()+" in state "+g.State(node).String()).
					WithDetail(diag.DetailKeyCommand, label.Cmd.String()).
					WithDetail(diag.DetailKeyState, g.State(node).String()).Build())
			}
			seenCmd[label.Cmd] = true

			// A subsequently involved role must not observe more of the
			// transition's events than the active role.
			t := label.Event
			for _, r := range pi.RolesOnPath(t, subs).Sorted() {
				if r == label.Role {
					continue
				}
				if subs.Contains(r, t) && !subs.Contains(label.Role, t) {
					issues = append(issues, diag.NewIssue(diag.Error, diag.E_LATER_INVOLVED_ROLE_MORE_SUBSCRIBED,
						"subsequently involved role "+r.String()+" subscribes to more events than active role "+
							label.Role.String()+" in transition "+g.EdgeString(e)+", namely ("+t.String()+")").
						WithDetail(diag.DetailKeyRole, r.String()).
						WithDetail(diag.DetailKeyTransition, g.EdgeString(e)).Build())
				}
			}
		}
	}
	return issues
}
