package machine

import (
	"slices"
	"strconv"
	"strings"

	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// subsetName renders a set of machine nodes as a brace-listed union name,
// members in node-id order: "{ a, b }".
func subsetName(g *Graph, nodes []graph.NodeID) swarm.State {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = g.State(n).String()
	}
	return swarm.NewState("{ " + strings.Join(names, ", ") + " }")
}

func subsetKey(nodes []graph.NodeID) string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(n)))
	}
	return b.String()
}

// NFAToDFA determinizes a machine by subset construction. The states of
// the result are the reachable subsets of machine states, named as
// brace-listed unions.
func NFAToDFA(nfa *Graph, initial graph.NodeID) (*Graph, graph.NodeID) {
	dfa := graph.New[swarm.State, swarm.MachineLabel]()
	if initial == graph.NoNode {
		return dfa, graph.NoNode
	}

	dfaNodes := make(map[string]graph.NodeID)
	start := []graph.NodeID{initial}
	dfaInitial := dfa.AddNode(subsetName(nfa, start))
	dfaNodes[subsetKey(start)] = dfaInitial

	stack := [][]graph.NodeID{start}
	for len(stack) > 0 {
		states := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		src := dfaNodes[subsetKey(states)]

		// Group the subset's outgoing transitions by label.
		byLabel := make(map[swarm.MachineLabel]map[graph.NodeID]bool)
		var labels []swarm.MachineLabel
		for _, n := range states {
			for _, e := range nfa.Out(n) {
				label := nfa.Label(e)
				if byLabel[label] == nil {
					byLabel[label] = make(map[graph.NodeID]bool)
					labels = append(labels, label)
				}
				byLabel[label][nfa.Target(e)] = true
			}
		}
		slices.SortFunc(labels, func(a, b swarm.MachineLabel) int { return a.Compare(b) })

		for _, label := range labels {
			targets := make([]graph.NodeID, 0, len(byLabel[label]))
			for n := range byLabel[label] {
				targets = append(targets, n)
			}
			slices.Sort(targets)
			key := subsetKey(targets)
			dst, ok := dfaNodes[key]
			if !ok {
				dst = dfa.AddNode(subsetName(nfa, targets))
				dfaNodes[key] = dst
				stack = append(stack, targets)
			}
			dfa.AddEdge(src, dst, label)
		}
	}
	return dfa, dfaInitial
}

// Minimal collapses language-equivalent states by partition refinement:
// the initial partition separates terminal from non-terminal states, and
// blocks split on (label, destination-block) signatures until stable.
func Minimal(g *Graph, initial graph.NodeID) (*Graph, graph.NodeID) {
	if initial == graph.NoNode {
		return graph.New[swarm.State, swarm.MachineLabel](), graph.NoNode
	}
	partition := refinePartition(g)

	blockOf := make([]int, g.NodeCount())
	for b, block := range partition {
		for _, n := range block {
			blockOf[n] = b
		}
	}

	minimal := graph.New[swarm.State, swarm.MachineLabel]()
	blockNode := make([]graph.NodeID, len(partition))
	for b, block := range partition {
		blockNode[b] = minimal.AddNode(subsetName(g, block))
	}

	type edgeKey struct {
		src   graph.NodeID
		label swarm.MachineLabel
		dst   graph.NodeID
	}
	seen := make(map[edgeKey]bool)
	for _, n := range g.NodeIDs() {
		for _, e := range g.Out(n) {
			src := blockNode[blockOf[n]]
			dst := blockNode[blockOf[g.Target(e)]]
			key := edgeKey{src: src, label: g.Label(e), dst: dst}
			if seen[key] {
				continue
			}
			seen[key] = true
			minimal.AddEdge(src, dst, g.Label(e))
		}
	}
	return minimal, blockNode[blockOf[initial]]
}

// refinePartition computes the coarsest stable partition. Blocks are kept
// sorted by their least member, so the result is deterministic.
func refinePartition(g *Graph) [][]graph.NodeID {
	var terminal, nonTerminal []graph.NodeID
	for _, n := range g.NodeIDs() {
		if g.IsTerminal(n) {
			terminal = append(terminal, n)
		} else {
			nonTerminal = append(nonTerminal, n)
		}
	}
	var partition [][]graph.NodeID
	for _, block := range [][]graph.NodeID{terminal, nonTerminal} {
		if len(block) > 0 {
			partition = append(partition, block)
		}
	}

	preLabels := func(block []graph.NodeID) []swarm.MachineLabel {
		set := make(map[swarm.MachineLabel]bool)
		var labels []swarm.MachineLabel
		for _, n := range block {
			for _, e := range g.In(n) {
				if label := g.Label(e); !set[label] {
					set[label] = true
					labels = append(labels, label)
				}
			}
		}
		slices.SortFunc(labels, func(a, b swarm.MachineLabel) int { return a.Compare(b) })
		return labels
	}

	for {
		snapshot := partition
		for _, superblock := range snapshot {
			for _, label := range preLabels(superblock) {
				partition = refineBy(g, partition, superblock, label)
			}
		}
		if len(partition) == len(snapshot) {
			return partition
		}
	}
}

// refineBy splits every block of partition on whether a state can take
// label into the superblock.
func refineBy(g *Graph, partition [][]graph.NodeID, superblock []graph.NodeID, label swarm.MachineLabel) [][]graph.NodeID {
	inSuper := make(map[graph.NodeID]bool, len(superblock))
	for _, n := range superblock {
		inSuper[n] = true
	}
	canEnter := func(n graph.NodeID) bool {
		for _, e := range g.Out(n) {
			if g.Label(e) == label && inSuper[g.Target(e)] {
				return true
			}
		}
		return false
	}

	var refined [][]graph.NodeID
	for _, block := range partition {
		var yes, no []graph.NodeID
		for _, n := range block {
			if canEnter(n) {
				yes = append(yes, n)
			} else {
				no = append(no, n)
			}
		}
		if len(yes) > 0 {
			refined = append(refined, yes)
		}
		if len(no) > 0 {
			refined = append(refined, no)
		}
	}
	slices.SortFunc(refined, func(a, b []graph.NodeID) int { return int(a[0] - b[0]) })
	return refined
}
