package protoinfo

import (
	"strings"

	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/swarm"
)

func newCollectorFrom(results ...diag.Result) *diag.Collector {
	c := diag.NewCollector()
	for _, r := range results {
		c.Merge(r)
	}
	return c
}

// withConfusionChecks appends the confusion-freeness issues of every
// protocol to that protocol's result.
func withConfusionChecks(pi *ProtoInfo) {
	for i := range pi.Protocols {
		issues := ConfusionFree(pi.Protocols[i].Graph)
		if len(issues) == 0 {
			continue
		}
		c := newCollectorFrom(pi.Protocols[i].Result)
		c.CollectAll(issues)
		pi.Protocols[i].Result = c.Result()
	}
}

// ConfusionFree checks that each event type is emitted by at most one
// transition and each command is enabled on at most one transition of g.
func ConfusionFree(g *Graph) []diag.Issue {
	eventEdges := make(map[swarm.EventType][]graph.EdgeID)
	commandEdges := make(map[swarm.Command][]graph.EdgeID)
	for _, e := range g.EdgeIDs() {
		label := g.Label(e)
		eventEdges[label.Event] = append(eventEdges[label.Event], e)
		commandEdges[label.Cmd] = append(commandEdges[label.Cmd], e)
	}

	prettyEdges := func(edges []graph.EdgeID) string {
		parts := make([]string, len(edges))
		for i, e := range edges {
			parts[i] = g.EdgeString(e)
		}
		return strings.Join(parts, ", ")
	}

	var issues []diag.Issue
	for _, t := range sets.SortedKeys(eventEdges) {
		if edges := eventEdges[t]; len(edges) > 1 {
			issues = append(issues, diag.NewIssue(diag.Error, diag.E_EVENT_EMITTED_MULTIPLE_TIMES,
				"event type "+t.String()+" emitted in more than one transition: "+prettyEdges(edges)).
				WithDetail(diag.DetailKeyEventType, t.String()).Build())
		}
	}
	for _, cmd := range sets.SortedKeys(commandEdges) {
		if edges := commandEdges[cmd]; len(edges) > 1 {
			issues = append(issues, diag.NewIssue(diag.Error, diag.E_COMMAND_ON_MULTIPLE_TRANSITIONS,
				"command "+cmd.String()+" enabled in more than one transition: "+prettyEdges(edges)).
				WithDetail(diag.DetailKeyCommand, cmd.String()).Build())
		}
	}
	return issues
}

// checkInterface verifies that the two chains agree on shared labels and
// that everything they share belongs to an interfacing role.
func checkInterface(a, b ProtoInfo) []diag.Issue {
	var issues []diag.Issue
	mapA, mapB := a.EventTypeMap(), b.EventTypeMap()
	shared := sets.New[swarm.EventType]()
	for t := range mapA {
		if _, ok := mapB[t]; ok {
			shared.Add(t)
		}
	}
	roles := interfacingRoles(a, b)

	for _, t := range shared.Sorted() {
		la, lb := mapA[t], mapB[t]
		if la.Cmd != lb.Cmd || la.Role != lb.Role {
			issues = append(issues, diag.NewIssue(diag.Error, diag.E_EVENT_TYPE_ON_DIFFERENT_LABELS,
				"Event type "+t.String()+" appears as "+la.Cmd.String()+"@"+la.Role.String()+"<"+t.String()+
					"> and as "+lb.Cmd.String()+"@"+lb.Role.String()+"<"+t.String()+">").
				WithDetail(diag.DetailKeyEventType, t.String()).Build())
			continue
		}
		if !roles.Has(la.Role) {
			issues = append(issues, diag.NewIssue(diag.Error, diag.E_SPURIOUS_INTERFACE,
				"Role "+la.Role.String()+" is not used as an interface, but the command "+la.Cmd.String()+
					" or the event type "+t.String()+" appear in both protocols").
				WithDetail(diag.DetailKeyRole, la.Role.String()).
				WithDetail(diag.DetailKeyEventType, t.String()).Build())
		}
	}

	cmdA, cmdB := a.CommandMap(), b.CommandMap()
	for _, cmd := range sets.SortedKeys(cmdA) {
		la := cmdA[cmd]
		lb, ok := cmdB[cmd]
		if !ok {
			continue
		}
		if la.Event != lb.Event || la.Role != lb.Role {
			issues = append(issues, diag.NewIssue(diag.Error, diag.E_COMMAND_ON_DIFFERENT_LABELS,
				"Command "+cmd.String()+" appears as "+cmd.String()+"@"+la.Role.String()+"<"+la.Event.String()+
					"> and as "+cmd.String()+"@"+lb.Role.String()+"<"+lb.Event.String()+">").
				WithDetail(diag.DetailKeyCommand, cmd.String()).Build())
		}
	}

	// Interfacing roles must execute the same labels on both sides;
	// anything one-sided cannot synchronize.
	for _, role := range roles.Sorted() {
		labelsA := a.RoleEventMap[role]
		labelsB := b.RoleEventMap[role]
		if labelsA.Equal(labelsB) {
			continue
		}
		oneSided := labelsA.Difference(labelsB).Union(labelsB.Difference(labelsA))
		for _, triple := range oneSided.Sorted() {
			issues = append(issues, diag.NewIssue(diag.Error, diag.E_INTERFACE_EVENT_MISSING,
				"event type "+triple.Event.String()+" does not appear in both protocols").
				WithDetail(diag.DetailKeyEventType, triple.Event.String()).
				WithDetail(diag.DetailKeyRole, role.String()).Build())
		}
	}

	return issues
}

// CheckRoleInterface validates a declared interface role between two
// prepared protocols: the role must be the only role shared by both, and
// it must execute the same labels on each side. Collaborators that carry
// explicit interface declarations use this before composing.
func CheckRoleInterface(a, b ProtoInfo, role swarm.Role) []diag.Issue {
	var issues []diag.Issue
	shared := interfacingRoles(a, b)
	if !shared.Has(role) || shared.Len() != 1 {
		issues = append(issues, diag.NewIssue(diag.Error, diag.E_INVALID_INTERFACE_ROLE,
			"role "+role.String()+" can not be used as interface").
			WithDetail(diag.DetailKeyRole, role.String()).Build())
	}
	labelsA := a.RoleEventMap[role]
	labelsB := b.RoleEventMap[role]
	if labelsA.Equal(labelsB) {
		return issues
	}
	oneSided := labelsA.Difference(labelsB).Union(labelsB.Difference(labelsA))
	for _, triple := range oneSided.Sorted() {
		issues = append(issues, diag.NewIssue(diag.Error, diag.E_INTERFACE_EVENT_MISSING,
			"event type "+triple.Event.String()+" does not appear in both protocols").
			WithDetail(diag.DetailKeyEventType, triple.Event.String()).
			WithDetail(diag.DetailKeyRole, role.String()).Build())
	}
	return issues
}
