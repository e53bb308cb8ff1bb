package swarm

import (
	"bytes"
	"encoding/json"

	"github.com/simon-lentz/swarmcheck/internal/sets"
)

// Subscriptions maps each role to the set of event types it observes.
//
// The zero map behaves as the empty subscription for reads; use
// [NewSubscriptions] or [Subscriptions.Clone] before writing.
type Subscriptions map[Role]sets.Set[EventType]

// NewSubscriptions returns an empty subscription map.
func NewSubscriptions() Subscriptions {
	return make(Subscriptions)
}

// Get returns the subscription set for role, or an empty set if absent.
// The returned set must not be mutated when the role is absent.
func (s Subscriptions) Get(role Role) sets.Set[EventType] {
	if set, ok := s[role]; ok {
		return set
	}
	return sets.Set[EventType]{}
}

// Contains reports whether role subscribes to t.
func (s Subscriptions) Contains(role Role, t EventType) bool {
	return s.Get(role).Has(t)
}

// Add subscribes role to every event type in events, reporting whether the
// map changed.
func (s Subscriptions) Add(role Role, events ...EventType) bool {
	set, ok := s[role]
	if !ok {
		set = sets.New[EventType]()
		s[role] = set
	}
	changed := false
	for _, t := range events {
		if set.Add(t) {
			changed = true
		}
	}
	return changed
}

// AddSet subscribes role to every event type in events, reporting whether
// the map changed.
func (s Subscriptions) AddSet(role Role, events sets.Set[EventType]) bool {
	set, ok := s[role]
	if !ok {
		set = sets.New[EventType]()
		s[role] = set
	}
	return set.AddAll(events)
}

// Roles returns the subscribed roles in ascending order.
func (s Subscriptions) Roles() []Role {
	return sets.SortedKeys(s)
}

// Clone returns an independent deep copy.
func (s Subscriptions) Clone() Subscriptions {
	c := make(Subscriptions, len(s))
	for role, set := range s {
		c[role] = set.Clone()
	}
	return c
}

// Equal reports whether s and o contain the same roles with the same sets.
// Roles mapped to empty sets count the same as absent roles.
func (s Subscriptions) Equal(o Subscriptions) bool {
	return s.IsSubOf(o) && o.IsSubOf(s)
}

// IsSubOf reports whether every subscription in s is contained in o,
// pointwise per role.
func (s Subscriptions) IsSubOf(o Subscriptions) bool {
	for role, set := range s {
		if !o.Get(role).HasAll(set) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the map as {"role": ["event", ...], ...} with roles
// and events in ascending order.
func (s Subscriptions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, role := range s.Roles() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(role.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		events := s[role].Sorted()
		names := make([]string, len(events))
		for j, t := range events {
			names[j] = t.String()
		}
		val, err := json.Marshal(names)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses {"role": ["event", ...], ...}.
func (s *Subscriptions) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Subscriptions, len(raw))
	for role, events := range raw {
		set := sets.New[EventType]()
		for _, t := range events {
			set.Add(NewEventType(t))
		}
		out[NewRole(role)] = set
	}
	*s = out
	return nil
}
