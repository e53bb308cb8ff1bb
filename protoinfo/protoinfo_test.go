package protoinfo

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/swarm"
)

func TestIngestBuildsReachableGraph(t *testing.T) {
	ps := Ingest(proto1(t))
	require.True(t, ps.NoErrors())
	assert.Equal(t, 4, ps.Graph.NodeCount())
	assert.Equal(t, 4, ps.Graph.EdgeCount())
	assert.Equal(t, "0", ps.Graph.State(ps.Initial).String())
	assert.Equal(t, []swarm.Role{swarm.NewRole("D"), swarm.NewRole("FL"), swarm.NewRole("T")}, ps.Roles.Sorted())

	reached := ps.Graph.Reachable(ps.Initial)
	for _, n := range ps.Graph.NodeIDs() {
		assert.True(t, reached[n], "node %s unreachable", ps.Graph.State(n))
	}
}

func TestIngestMalformedLogTypes(t *testing.T) {
	ps := Ingest(malformedProto1(t))
	got := ps.Result.Messages()
	want := []string{
		"transition (0)--[close@D<time,time2>]-->(0) emits more than one event type",
		"log type must not be empty (1)--[get@FL<>]-->(2)",
	}
	slices.Sort(got)
	slices.Sort(want)
	assert.Equal(t, want, got)
}

func TestIngestDisconnectedInitial(t *testing.T) {
	ps := Ingest(malformedProto2(t))
	assert.Equal(t, graph.NoNode, ps.Initial)
	assert.Equal(t, []string{"initial swarm protocol state has no transitions"}, ps.Result.Messages())
}

func TestIngestUnreachableStates(t *testing.T) {
	ps := Ingest(malformedProto3(t))
	want := []string{
		"state 2 is unreachable from initial state",
		"state 3 is unreachable from initial state",
		"state 4 is unreachable from initial state",
		"state 5 is unreachable from initial state",
	}
	got := ps.Result.Messages()
	slices.Sort(got)
	assert.Equal(t, want, got)
}

func TestConfusionFreeness(t *testing.T) {
	pi := FromProtocols([]swarm.SwarmProtocol{confusionfulProto1(t)})
	require.Len(t, pi.Protocols, 1)
	got := pi.Protocols[0].Result.Messages()
	want := []string{
		"command request enabled in more than one transition: (0)--[request@T<partID>]-->(1), (0)--[request@T<partID>]-->(0), (2)--[request@T<pos>]-->(0)",
		"event type partID emitted in more than one transition: (0)--[request@T<partID>]-->(1), (0)--[request@T<partID>]-->(0)",
		"event type pos emitted in more than one transition: (1)--[get@FL<pos>]-->(2), (2)--[request@T<pos>]-->(0)",
	}
	slices.Sort(got)
	slices.Sort(want)
	assert.Equal(t, want, got)
	assert.True(t, pi.Protocols[0].Result.CodeSeen(diag.E_EVENT_EMITTED_MULTIPLE_TIMES))
	assert.True(t, pi.Protocols[0].Result.CodeSeen(diag.E_COMMAND_ON_MULTIPLE_TRANSITIONS))
}

func TestPrepareDerivedData(t *testing.T) {
	pi := Prepare(proto1(t))
	require.Len(t, pi.Protocols, 1)
	require.True(t, pi.NoErrors())

	// State 0 branches into request and close; the other multi-edge node
	// shapes do not occur here.
	require.Len(t, pi.BranchingEvents, 1)
	assert.Equal(t, events("partID", "time"), pi.BranchingEvents[0].Sorted())

	assert.Equal(t, 0, pi.ConcurrentEvents.Len())
	assert.Empty(t, pi.JoiningEvents)

	// partID is preceded by the delivery closing the loop.
	assert.Equal(t, events("part"), pi.ImmediatelyPre[swarm.NewEventType("partID")].Sorted())

	// The request loop makes everything (including partID itself) succeed partID.
	assert.Equal(t, events("part", "partID", "pos", "time"),
		pi.SucceedingEvents[swarm.NewEventType("partID")].Sorted())

	// Everything reaches the terminal state 3.
	assert.Equal(t, 0, pi.InfinitelyLooping.Len())
}

func TestPrepareNoBranchWhenTargetsAgree(t *testing.T) {
	pi := Prepare(proto3(t))
	// accept and reject both lead to state 4: no observable choice.
	assert.Empty(t, pi.BranchingEvents)
}

func TestCombineWarehouseChain(t *testing.T) {
	pi := FromProtocols(warehouseChain(t))
	require.True(t, pi.NoErrors())
	require.Len(t, pi.Protocols, 2)

	assert.Equal(t, events("part", "partID"), pi.InterfacingEvents.Sorted())

	wantConc := sets.New(
		swarm.PairOf(swarm.NewEventType("pos"), swarm.NewEventType("car")),
		swarm.PairOf(swarm.NewEventType("time"), swarm.NewEventType("car")),
	)
	assert.True(t, wantConc.Equal(pi.ConcurrentEvents))

	require.Len(t, pi.BranchingEvents, 1)
	assert.Equal(t, events("partID", "time"), pi.BranchingEvents[0].Sorted())
	assert.Empty(t, pi.JoiningEvents)

	// Role/event map covers both protocols.
	tLabels := pi.RoleEventMap[swarm.NewRole("T")]
	require.NotNil(t, tLabels)
	assert.Equal(t, 2, tLabels.Len())
	assert.Equal(t, 1, pi.RoleEventMap[swarm.NewRole("F")].Len())
}

func TestCombineInterfaceMismatch(t *testing.T) {
	// proto5 with a renamed interface label cannot synchronize with proto4.
	broken := parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "c_ir_0", "logType": ["e_other"], "role": "IR" } },
			{ "source": "1", "target": "2", "label": { "cmd": "c_r1_0", "logType": ["e_r1_0"], "role": "R1" } }
		]
	}`)
	pi := FromProtocols([]swarm.SwarmProtocol{proto4(t), broken})
	assert.False(t, pi.NoErrors())
	assert.True(t, pi.InterfaceResult.CodeSeen(diag.E_COMMAND_ON_DIFFERENT_LABELS))
}

func TestCheckRoleInterface(t *testing.T) {
	a := Prepare(proto4(t))
	b := Prepare(proto5(t))
	assert.Empty(t, CheckRoleInterface(a, b, swarm.NewRole("IR")))

	issues := CheckRoleInterface(a, b, swarm.NewRole("R0"))
	require.NotEmpty(t, issues)
	assert.Equal(t, diag.E_INVALID_INTERFACE_ROLE, issues[0].Code())
}

func TestJoiningEventMap(t *testing.T) {
	// Two satellites joining on c_ir: the concurrent first steps are the
	// stored pre-set of the joining event.
	join := []swarm.SwarmProtocol{
		parseProto(t, `{
			"initial": "0",
			"transitions": [
				{ "source": "0", "target": "1", "label": { "cmd": "c_r0", "logType": ["e_r0"], "role": "R0" } },
				{ "source": "1", "target": "2", "label": { "cmd": "c_ir", "logType": ["e_ir"], "role": "IR" } }
			]
		}`),
		parseProto(t, `{
			"initial": "0",
			"transitions": [
				{ "source": "0", "target": "1", "label": { "cmd": "c_r1", "logType": ["e_r1"], "role": "R1" } },
				{ "source": "1", "target": "2", "label": { "cmd": "c_ir", "logType": ["e_ir"], "role": "IR" } }
			]
		}`),
	}
	pi := FromProtocols(join)
	require.True(t, pi.NoErrors())

	assert.True(t, pi.ConcurrentEvents.Has(swarm.PairOf(swarm.NewEventType("e_r0"), swarm.NewEventType("e_r1"))))

	pre, ok := pi.JoiningEvents[swarm.NewEventType("e_ir")]
	require.True(t, ok)
	assert.Equal(t, events("e_r0", "e_r1"), pre.Sorted())

	flat := FlattenJoining(pi.JoiningEvents)
	assert.Equal(t, events("e_ir", "e_r0", "e_r1"), flat.Sorted())

	// The joining event is special for path explanations.
	assert.True(t, pi.BranchingJoining().Has(swarm.NewEventType("e_ir")))
}

func TestInfinitelyLoopingEvents(t *testing.T) {
	pi := Prepare(loopingProto1(t))
	assert.Equal(t, events("c", "d", "e"), pi.InfinitelyLooping.Sorted())
}

func TestExplicitCompositionWarehouse(t *testing.T) {
	pi := FromProtocols(warehouseChain(t))
	composed := ExplicitComposition(pi)
	require.Len(t, composed.Protocols, 1)

	g := composed.Protocols[0].Graph
	assert.Equal(t, 8, g.NodeCount())
	assert.Equal(t, 8, g.EdgeCount())

	// Succeeding events recomputed on the composition: the request loop is
	// gone, so partID no longer succeeds itself.
	succ := composed.SucceedingEvents[swarm.NewEventType("partID")]
	require.NotNil(t, succ)
	assert.False(t, succ.Has(swarm.NewEventType("partID")))
	assert.True(t, succ.Has(swarm.NewEventType("car")))

	// Branch groups and concurrency carry over from the chain.
	require.Len(t, composed.BranchingEvents, 1)
	assert.True(t, composed.ConcurrentEvents.Equal(pi.ConcurrentEvents))
}

func TestComposeProtocolsRoundTrip(t *testing.T) {
	g, initial, report := ComposeProtocols(warehouseChain(t))
	require.True(t, report.OK())
	wire := ToWire(g, initial)
	assert.Equal(t, "0 || 0", wire.Initial.String())
	assert.Len(t, wire.Transitions, 8)

	// The serialized composition ingests cleanly.
	ps := Ingest(wire)
	assert.True(t, ps.NoErrors())
	assert.Equal(t, 8, ps.Graph.NodeCount())
}

func TestEmptyChain(t *testing.T) {
	pi := FromProtocols(nil)
	assert.True(t, pi.NoErrors())
	assert.Empty(t, pi.Protocols)

	composed := ExplicitComposition(pi)
	assert.Empty(t, composed.Protocols)
}

func TestTransitiveClosure(t *testing.T) {
	a, b, c := swarm.NewEventType("a"), swarm.NewEventType("b"), swarm.NewEventType("c")
	closed := TransitiveClosure(map[swarm.EventType]sets.Set[swarm.EventType]{
		a: sets.New(b),
		b: sets.New(c),
	})
	assert.True(t, closed[a].Has(c))
	assert.False(t, closed[b].Has(a))
}
