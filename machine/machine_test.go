package machine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

func TestProjectTireFactory(t *testing.T) {
	subs := subsOf(map[string][]string{
		"C": {"tireID", "position", "tire", "car"},
		"W": {"tireID", "position", "tire"},
		"F": {"tireID", "tire", "car"},
	})
	ps := protoinfo.Ingest(tireProto(t))
	require.True(t, ps.NoErrors())

	proj, initial := Project(ps.Graph, ps.Initial, subs, swarm.NewRole("F"), false)
	got := transitionSet(ToWire(proj, initial))
	want := []string{
		"0 --tireID?--> 1",
		"1 --tire?--> 3",
		"3 --build/car--> 3",
		"3 --car?--> 4",
	}
	slices.Sort(got)
	slices.Sort(want)
	assert.Equal(t, want, got)
	assert.Equal(t, "0", proj.State(initial).String())
}

func TestProjectWarehouseForklift(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
		"D":  {"partID", "part", "time"},
	})
	ps := protoinfo.Ingest(proto1(t))
	require.True(t, ps.NoErrors())

	proj, initial := Project(ps.Graph, ps.Initial, subs, swarm.NewRole("FL"), false)
	got := transitionSet(ToWire(proj, initial))
	want := []string{
		"0 --partID?--> 1",
		"0 --time?--> 3",
		"1 --get/pos--> 1",
		"1 --pos?--> 2",
		"2 --partID?--> 1",
		"2 --time?--> 3",
	}
	slices.Sort(got)
	slices.Sort(want)
	assert.Equal(t, want, got)
}

// Projection soundness: every input event of the projection is in the
// role's subscription, and Execute loops only carry the role's commands.
func TestProjectionSoundness(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
	})
	ps := protoinfo.Ingest(proto1(t))
	role := swarm.NewRole("FL")
	proj, _ := Project(ps.Graph, ps.Initial, subs, role, false)
	for _, e := range proj.EdgeIDs() {
		assert.True(t, subs.Contains(role, proj.Label(e).EventType()),
			"event %s not subscribed", proj.Label(e).EventType())
		if proj.Label(e).Kind == swarm.Execute {
			assert.Equal(t, proj.Source(e), proj.Target(e), "Execute edges are self-loops")
		}
	}
}

func TestProjectOverComposition(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time", "car"},
		"FL": {"partID", "pos", "time"},
		"D":  {"partID", "part", "time"},
		"F":  {"partID", "part", "time", "car"},
	})
	g, initial, report := protoinfo.ComposeProtocols(warehouseChain(t))
	require.True(t, report.OK())

	proj, projInitial := Project(g, initial, subs, swarm.NewRole("T"), false)
	got := transitionSet(ToWire(proj, projInitial))
	want := []string{
		"0 || 0 --request/partID--> 0 || 0",
		"0 || 0 --partID?--> 1 || 1",
		"0 || 0 --time?--> 3 || 0",
		"1 || 1 --pos?--> 2 || 1",
		"2 || 1 --deliver/part--> 2 || 1",
		"2 || 1 --part?--> 0 || 2",
		"0 || 2 --time?--> 3 || 2",
		"3 || 2 --car?--> 3 || 3",
		"0 || 2 --car?--> 0 || 3",
		"0 || 3 --time?--> 3 || 3",
	}
	slices.Sort(got)
	slices.Sort(want)
	assert.Equal(t, want, got)
}

func TestProjectCombineWarehouseBuilder(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
		"D":  {"partID", "part", "time"},
		"F":  {"partID", "part", "time", "car"},
	})
	pi := protoinfo.FromProtocols(warehouseChain(t))
	require.True(t, pi.NoErrors())

	proj, initial := ProjectCombine(pi, subs, swarm.NewRole("F"), false)
	require.NotEqual(t, graph.NoNode, initial)
	assert.Equal(t, "0 || 0", proj.State(initial).String())

	got := transitionSet(ToWire(proj, initial))
	for _, want := range []string{
		"0 || 0 --partID?--> 1 || 1",
		"1 || 1 --part?--> 0 || 2",
		"0 || 2 --build/car--> 0 || 2",
		"0 || 2 --car?--> 0 || 3",
	} {
		assert.Contains(t, got, want)
	}

	// The chain ends in the joint terminal state.
	var terminal graph.NodeID = graph.NoNode
	for _, n := range proj.NodeIDs() {
		if proj.State(n).String() == "3 || 3" {
			terminal = n
		}
	}
	require.NotEqual(t, graph.NoNode, terminal)
	assert.True(t, proj.IsTerminal(terminal))
}

// Projecting the explicit composition and composing the per-protocol
// projections accept the same language.
func TestProjectRoundTrip(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
		"D":  {"partID", "part", "time"},
		"F":  {"partID", "part", "time", "car"},
	})
	role := swarm.NewRole("F")

	g, initial, report := protoinfo.ComposeProtocols(warehouseChain(t))
	require.True(t, report.OK())
	expanded, expandedInitial := Project(g, initial, subs, role, false)

	pi := protoinfo.FromProtocols(warehouseChain(t))
	combined, combinedInitial := ProjectCombine(pi, subs, role, false)

	assert.Empty(t, Equivalent(expanded, expandedInitial, combined, combinedInitial))
}

func TestMinimizeCollapsesEquivalentStates(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
		"D":  {"partID", "part", "time"},
	})
	ps := protoinfo.Ingest(proto1(t))
	proj, initial := Project(ps.Graph, ps.Initial, subs, swarm.NewRole("FL"), true)

	// States 0 and 2 behave identically and collapse into one block.
	assert.Equal(t, 3, proj.NodeCount())
	assert.Equal(t, 4, proj.EdgeCount())
	assert.Contains(t, proj.State(initial).String(), "0")

	// Minimization preserves the language.
	plain, plainInitial := Project(ps.Graph, ps.Initial, subs, swarm.NewRole("FL"), false)
	assert.Empty(t, Equivalent(plain, plainInitial, proj, initial))
}

func TestNFAToDFADeterminizes(t *testing.T) {
	// Two edges with the same input label from the initial state.
	g := graph.New[swarm.State, swarm.MachineLabel]()
	s0 := g.AddNode(swarm.NewState("0"))
	s1 := g.AddNode(swarm.NewState("1"))
	s2 := g.AddNode(swarm.NewState("2"))
	g.AddEdge(s0, s1, swarm.InputLabel(swarm.NewEventType("x")))
	g.AddEdge(s0, s2, swarm.InputLabel(swarm.NewEventType("x")))
	g.AddEdge(s2, s0, swarm.InputLabel(swarm.NewEventType("y")))

	dfa, initial := NFAToDFA(g, s0)
	assert.Equal(t, "{ 0 }", dfa.State(initial).String())
	for _, n := range dfa.NodeIDs() {
		seen := map[swarm.MachineLabel]bool{}
		for _, e := range dfa.Out(n) {
			require.False(t, seen[dfa.Label(e)], "duplicate label after determinization")
			seen[dfa.Label(e)] = true
		}
	}
}

func TestEquivalentIsReflexive(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
	})
	ps := protoinfo.Ingest(proto1(t))
	proj, initial := Project(ps.Graph, ps.Initial, subs, swarm.NewRole("FL"), false)
	assert.Empty(t, Equivalent(proj, initial, proj, initial))
}

func TestEquivalentFlagsMissingTransition(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
	})
	ps := protoinfo.Ingest(proto1(t))
	proj, initial := Project(ps.Graph, ps.Initial, subs, swarm.NewRole("FL"), false)

	// A machine missing the time? transition out of the initial state.
	m, mInitial, issues := FromWire(swarm.Machine{
		Initial: swarm.NewState("0"),
		Transitions: []swarm.Transition[swarm.MachineLabel]{
			{Label: swarm.InputLabel(swarm.NewEventType("partID")), Source: swarm.NewState("0"), Target: swarm.NewState("1")},
		},
	})
	require.Empty(t, issues)
	found := Equivalent(proj, initial, m, mInitial)
	require.NotEmpty(t, found)
	codes := map[string]bool{}
	for _, issue := range found {
		codes[issue.Code().String()] = true
	}
	assert.True(t, codes["E_MACHINE_MISSING_TRANSITION"])
}

func TestFromWireRejectsStrayExecute(t *testing.T) {
	_, _, issues := FromWire(swarm.Machine{
		Initial: swarm.NewState("0"),
		Transitions: []swarm.Transition[swarm.MachineLabel]{
			{Label: swarm.ExecuteLabel(swarm.NewCommand("go"), swarm.NewEventType("x")),
				Source: swarm.NewState("0"), Target: swarm.NewState("1")},
		},
	})
	require.Len(t, issues, 1)
	assert.Equal(t, "command go is not a self-loop in state 0", issues[0].Message())
}

func TestProjectionInformation(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
		"D":  {"partID", "part", "time"},
		"F":  {"partID", "part", "time", "car"},
	})
	pi := protoinfo.FromProtocols(warehouseChain(t))
	require.True(t, pi.NoErrors())

	// The builder's existing machine, projected from the factory protocol
	// alone before the chain was extended.
	existing, existingInitial, issues := FromWire(swarm.Machine{
		Initial: swarm.NewState("0"),
		Transitions: []swarm.Transition[swarm.MachineLabel]{
			{Label: swarm.InputLabel(swarm.NewEventType("part")), Source: swarm.NewState("0"), Target: swarm.NewState("2")},
			{Label: swarm.ExecuteLabel(swarm.NewCommand("build"), swarm.NewEventType("car")), Source: swarm.NewState("2"), Target: swarm.NewState("2")},
			{Label: swarm.InputLabel(swarm.NewEventType("car")), Source: swarm.NewState("2"), Target: swarm.NewState("3")},
		},
	})
	require.Empty(t, issues)

	info, ok := ProjectionInformation(pi, subs, swarm.NewRole("F"), existing, existingInitial, 1, false)
	require.True(t, ok)
	assert.NotEmpty(t, info.Projection.Transitions)
	assert.Equal(t, []swarm.EventType{swarm.NewEventType("partID"), swarm.NewEventType("time")}, info.SpecialEventTypes)
	assert.NotEmpty(t, info.ProjToMachineStates)

	// Out-of-range index is rejected.
	_, ok = ProjectionInformation(pi, subs, swarm.NewRole("F"), existing, existingInitial, 5, false)
	assert.False(t, ok)
}

func TestPathsFromEventTypes(t *testing.T) {
	subs := subsOf(map[string][]string{
		"T":  {"partID", "pos", "part", "time"},
		"FL": {"partID", "pos", "time"},
		"D":  {"partID", "part", "time"},
		"F":  {"partID", "part", "time", "car"},
	})
	pi := protoinfo.FromProtocols(warehouseChain(t))
	proj, _ := ProjectCombine(pi, subs, swarm.NewRole("F"), false)

	branches := PathsFromEventTypes(proj, pi)
	require.Contains(t, branches, swarm.NewEventType("partID"))
	// After partID the builder sees the delivered part before anything
	// branches again.
	assert.Contains(t, branches[swarm.NewEventType("partID")], swarm.NewEventType("part"))
}
