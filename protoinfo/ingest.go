package protoinfo

import (
	"context"
	"log/slog"

	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/internal/trace"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// Ingest converts an external protocol description to graph form.
//
// Nodes are added on first mention of either transition endpoint; one
// directed edge is added per transition, in input order. Ingest records
// structural issues (empty or multi-event log types, disconnected initial
// state, unreachable states) but still returns a usable graph; no further
// semantic check happens here.
func Ingest(proto swarm.SwarmProtocol) ProtoStruct {
	return IngestContext(context.Background(), nil, proto)
}

// IngestContext is [Ingest] with operation-boundary logging.
func IngestContext(ctx context.Context, logger *slog.Logger, proto swarm.SwarmProtocol) ProtoStruct {
	op := trace.Begin(ctx, logger, "swarmcheck.protoinfo.ingest",
		slog.String("initial", proto.Initial.String()),
		slog.Int("transitions", len(proto.Transitions)))
	defer op.End(nil)

	g := graph.New[swarm.State, swarm.SwarmLabel]()
	collector := diag.NewCollector()
	nodes := make(map[swarm.State]graph.NodeID)
	roles := sets.New[swarm.Role]()

	ensure := func(s swarm.State) graph.NodeID {
		if id, ok := nodes[s]; ok {
			return id
		}
		id := g.AddNode(s)
		nodes[s] = id
		return id
	}

	for _, t := range proto.Transitions {
		src := ensure(t.Source)
		dst := ensure(t.Target)
		g.AddEdge(src, dst, t.Label.Core())
		roles.Add(t.Label.Role)

		// Structural log-type issues render against the wire transition,
		// which still carries the full logType list.
		ref := "(" + t.Source.String() + ")--[" + t.Label.String() + "]-->(" + t.Target.String() + ")"
		switch {
		case len(t.Label.LogType) == 0:
			collector.Collect(diag.NewIssue(diag.Error, diag.E_LOG_TYPE_EMPTY,
				"log type must not be empty "+ref).
				WithDetail(diag.DetailKeyTransition, ref).Build())
		case len(t.Label.LogType) > 1:
			collector.Collect(diag.NewIssue(diag.Error, diag.E_LOG_TYPE_MULTIPLE,
				"transition "+ref+" emits more than one event type").
				WithDetail(diag.DetailKeyTransition, ref).Build())
		}
	}

	initial := graph.NoNode
	if id, ok := nodes[proto.Initial]; ok {
		initial = id
		reached := g.Reachable(initial)
		for _, n := range g.NodeIDs() {
			if !reached[n] {
				collector.Collect(diag.NewIssue(diag.Error, diag.E_STATE_UNREACHABLE,
					"state "+g.State(n).String()+" is unreachable from initial state").
					WithDetail(diag.DetailKeyState, g.State(n).String()).Build())
			}
		}
	} else {
		collector.Collect(diag.NewIssue(diag.Error, diag.E_INITIAL_STATE_DISCONNECTED,
			"initial swarm protocol state has no transitions").
			WithDetail(diag.DetailKeyState, proto.Initial.String()).Build())
	}

	return ProtoStruct{Graph: g, Initial: initial, Result: collector.Result(), Roles: roles}
}

// ToWire serializes a protocol graph back to its external description.
// Transitions appear in edge insertion order.
func ToWire(g *Graph, initial graph.NodeID) swarm.SwarmProtocol {
	transitions := make([]swarm.Transition[swarm.WireSwarmLabel], 0, g.EdgeCount())
	for _, e := range g.EdgeIDs() {
		transitions = append(transitions, swarm.Transition[swarm.WireSwarmLabel]{
			Label:  g.Label(e).Wire(),
			Source: g.State(g.Source(e)),
			Target: g.State(g.Target(e)),
		})
	}
	var first swarm.State
	if g.HasNode(initial) {
		first = g.State(initial)
	}
	return swarm.SwarmProtocol{Initial: first, Transitions: transitions}
}
