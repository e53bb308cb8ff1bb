// Package compose implements the synchronized product of two labeled
// graphs over a set of interfacing event types.
//
// The same operator serves protocol composition and the chaining of
// per-role projections; the node-merge function parameter is the only
// thing that differs between uses, including the adaptation overlay.
package compose

import (
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// GenNode merges the payloads of a node pair into the payload of the
// composed node.
type GenNode[N graph.Node] func(N, N) N

// StateNamePair is the standard node merge: "a || b".
func StateNamePair(a, b swarm.State) swarm.State {
	return swarm.NewState(a.String() + " || " + b.String())
}

// Compose builds the synchronized product of (g1, i1) and (g2, i2) over
// the interfacing event types in interfaceSet.
//
// From each reachable pair (s1, s2):
//   - edges of s1 whose event is not interfacing advance only s1;
//   - edges of s2 whose event is not interfacing advance only s2;
//   - interfacing edges enabled in both with the same label advance both;
//   - interfacing edges enabled in only one side are dropped at that pair.
//
// Target pairs are deduplicated, so the result's nodes are the subset of
// the Cartesian product reachable under these rules. Inputs are not
// modified.
func Compose[N graph.Node, L graph.Label](
	g1 *graph.Graph[N, L], i1 graph.NodeID,
	g2 *graph.Graph[N, L], i2 graph.NodeID,
	interfaceSet sets.Set[swarm.EventType],
	genNode GenNode[N],
) (*graph.Graph[N, L], graph.NodeID) {
	out := graph.New[N, L]()

	type pair struct{ a, b graph.NodeID }
	nodeFor := make(map[pair]graph.NodeID)

	outgoingMap := func(g *graph.Graph[N, L], src graph.NodeID) map[L]graph.NodeID {
		m := make(map[L]graph.NodeID, len(g.Out(src)))
		for _, e := range g.Out(src) {
			m[g.Label(e)] = g.Target(e)
		}
		return m
	}

	// Labels to follow from (s1, s2), in a deterministic order: the
	// non-interfacing edges of each side in insertion order, then the
	// interfacing labels enabled on both sides in s1's edge order.
	candidateLabels := func(s1, s2 graph.NodeID, enabled2 map[L]graph.NodeID) []L {
		var labels []L
		for _, e := range g1.Out(s1) {
			if l := g1.Label(e); !interfaceSet.Has(l.EventType()) {
				labels = append(labels, l)
			}
		}
		for _, e := range g2.Out(s2) {
			if l := g2.Label(e); !interfaceSet.Has(l.EventType()) {
				labels = append(labels, l)
			}
		}
		for _, e := range g1.Out(s1) {
			l := g1.Label(e)
			if !interfaceSet.Has(l.EventType()) {
				continue
			}
			if _, ok := enabled2[l]; ok {
				labels = append(labels, l)
			}
		}
		return labels
	}

	initial := out.AddNode(genNode(g1.Node(i1), g2.Node(i2)))
	nodeFor[pair{i1, i2}] = initial
	worklist := []pair{{i1, i2}}

	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		src := nodeFor[cur]

		map1 := outgoingMap(g1, cur.a)
		map2 := outgoingMap(g2, cur.b)

		for _, label := range candidateLabels(cur.a, cur.b, map2) {
			dst1, ok1 := map1[label]
			dst2, ok2 := map2[label]
			if !ok1 {
				dst1 = cur.a
			}
			if !ok2 {
				dst2 = cur.b
			}
			next := pair{dst1, dst2}
			dst, seen := nodeFor[next]
			if !seen {
				dst = out.AddNode(genNode(g1.Node(dst1), g2.Node(dst2)))
				nodeFor[next] = dst
				worklist = append(worklist, next)
			}
			out.AddEdge(src, dst, label)
		}
	}

	return out, initial
}
