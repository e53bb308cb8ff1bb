package machine

import (
	"slices"

	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// Equivalent checks language equivalence of a canonical projection and a
// candidate machine by a simultaneous worklist over state pairs: at every
// reachable pair the outgoing label sets must coincide, and each shared
// label must lead to a consistent destination pair. Findings reference
// the states of both graphs.
func Equivalent(proj *Graph, projInitial graph.NodeID, m *Graph, mInitial graph.NodeID) []diag.Issue {
	var issues []diag.Issue
	if projInitial == graph.NoNode || mInitial == graph.NoNode {
		if proj.NodeCount() == 0 && m.NodeCount() == 0 {
			return nil
		}
		return []diag.Issue{diag.NewIssue(diag.Error, diag.E_MACHINE_INITIAL_DISCONNECTED,
			"initial machine state has no transitions").Build()}
	}

	outgoing := func(g *Graph, n graph.NodeID, name string) (map[swarm.MachineLabel]graph.NodeID, []swarm.MachineLabel) {
		byLabel := make(map[swarm.MachineLabel]graph.NodeID)
		var labels []swarm.MachineLabel
		for _, e := range g.Out(n) {
			label := g.Label(e)
			if dst, ok := byLabel[label]; ok {
				if dst != g.Target(e) {
					issues = append(issues, diag.NewIssue(diag.Error, diag.E_MACHINE_NON_DETERMINISTIC,
						"label "+label.String()+" leads to multiple states from state "+g.State(n).String()+" of the "+name).
						WithDetail(diag.DetailKeyState, g.State(n).String()).Build())
				}
				continue
			}
			byLabel[label] = g.Target(e)
			labels = append(labels, label)
		}
		slices.SortFunc(labels, func(a, b swarm.MachineLabel) int { return a.Compare(b) })
		return byLabel, labels
	}

	type pair struct{ a, b graph.NodeID }
	visited := map[pair]bool{{projInitial, mInitial}: true}
	worklist := []pair{{projInitial, mInitial}}

	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		projOut, projLabels := outgoing(proj, cur.a, "projection")
		mOut, mLabels := outgoing(m, cur.b, "machine")

		for _, label := range projLabels {
			if _, ok := mOut[label]; !ok {
				issues = append(issues, diag.NewIssue(diag.Error, diag.E_MACHINE_MISSING_TRANSITION,
					"machine lacks transition "+label.String()+" in state "+m.State(cur.b).String()+
						" (projection state "+proj.State(cur.a).String()+")").
					WithDetail(diag.DetailKeyState, m.State(cur.b).String()).Build())
			}
		}
		for _, label := range mLabels {
			if _, ok := projOut[label]; !ok {
				issues = append(issues, diag.NewIssue(diag.Error, diag.E_MACHINE_EXTRA_TRANSITION,
					"machine has extra transition "+label.String()+" in state "+m.State(cur.b).String()+
						" (projection state "+proj.State(cur.a).String()+")").
					WithDetail(diag.DetailKeyState, m.State(cur.b).String()).Build())
			}
		}

		for _, label := range projLabels {
			mDst, ok := mOut[label]
			if !ok {
				continue
			}
			next := pair{projOut[label], mDst}
			if !visited[next] {
				visited[next] = true
				worklist = append(worklist, next)
			}
		}
	}
	return issues
}
