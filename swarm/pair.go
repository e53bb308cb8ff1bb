package swarm

// UnorderedEventPair is a canonical unordered pair of event types:
// {a, b} equals {b, a}. The lexicographically smaller event is always
// stored first, so struct equality and map keying respect the unordered
// semantics. The concurrency relation is keyed by this type.
type UnorderedEventPair struct {
	a, b EventType
}

// PairOf builds the canonical unordered pair of x and y.
func PairOf(x, y EventType) UnorderedEventPair {
	if x.Compare(y) <= 0 {
		return UnorderedEventPair{a: x, b: y}
	}
	return UnorderedEventPair{a: y, b: x}
}

// Events returns the pair members in canonical order. Both values are
// equal for a degenerate pair.
func (p UnorderedEventPair) Events() (EventType, EventType) { return p.a, p.b }

// Has reports whether t is a member of the pair.
func (p UnorderedEventPair) Has(t EventType) bool { return p.a == t || p.b == t }

// String renders the pair as "{a, b}".
func (p UnorderedEventPair) String() string {
	return "{" + p.a.String() + ", " + p.b.String() + "}"
}

// Compare orders pairs lexicographically on the canonical tuple.
func (p UnorderedEventPair) Compare(o UnorderedEventPair) int {
	if c := p.a.Compare(o.a); c != 0 {
		return c
	}
	return p.b.Compare(o.b)
}
