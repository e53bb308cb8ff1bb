package machine

import (
	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// FromWire converts an external machine description to graph form.
//
// Nodes are added on first mention; Execute transitions that are not
// self-loops are reported. The returned initial is [graph.NoNode] when
// the declared initial state appears on no transition; the caller decides
// whether that is an error.
func FromWire(m swarm.Machine) (*Graph, graph.NodeID, []diag.Issue) {
	g := graph.New[swarm.State, swarm.MachineLabel]()
	nodes := make(map[swarm.State]graph.NodeID)
	var issues []diag.Issue

	ensure := func(s swarm.State) graph.NodeID {
		if id, ok := nodes[s]; ok {
			return id
		}
		id := g.AddNode(s)
		nodes[s] = id
		return id
	}

	for _, t := range m.Transitions {
		src := ensure(t.Source)
		dst := ensure(t.Target)
		if t.Label.Kind == swarm.Execute && src != dst {
			issues = append(issues, diag.NewIssue(diag.Error, diag.E_EXECUTE_NOT_SELF_LOOP,
				"command "+t.Label.Cmd.String()+" is not a self-loop in state "+t.Source.String()).
				WithDetail(diag.DetailKeyCommand, t.Label.Cmd.String()).
				WithDetail(diag.DetailKeyState, t.Source.String()).Build())
		}
		g.AddEdge(src, dst, t.Label)
	}

	initial := graph.NoNode
	if id, ok := nodes[m.Initial]; ok {
		initial = id
	}
	return g, initial, issues
}

// ToWire serializes a machine graph back to its external description.
// Transitions appear in edge insertion order.
func ToWire(g *Graph, initial graph.NodeID) swarm.Machine {
	transitions := make([]swarm.Transition[swarm.MachineLabel], 0, g.EdgeCount())
	for _, e := range g.EdgeIDs() {
		transitions = append(transitions, swarm.Transition[swarm.MachineLabel]{
			Label:  g.Label(e),
			Source: g.State(g.Source(e)),
			Target: g.State(g.Target(e)),
		})
	}
	var first swarm.State
	if g.HasNode(initial) {
		first = g.State(initial)
	}
	return swarm.Machine{Initial: first, Transitions: transitions}
}
