package swarm

import "github.com/simon-lentz/swarmcheck/internal/intern"

// State names a protocol or machine state. Interned; equality is O(1) and
// ordering is value-based and total.
type State struct{ n intern.Name }

// NewState interns name as a State.
func NewState(name string) State { return State{n: intern.Make(name)} }

func (s State) String() string { return s.n.Value() }

// IsZero reports whether the state name is unset.
func (s State) IsZero() bool { return s.n.IsZero() }

// Compare orders states by name.
func (s State) Compare(o State) int { return s.n.Compare(o.n) }

// StateName returns the state itself. It exists so State satisfies the
// node-payload contract of graph nodes alongside richer payloads.
func (s State) StateName() State { return s }

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	*s = NewState(string(b))
	return nil
}

// Role names a participant of a protocol.
type Role struct{ n intern.Name }

// NewRole interns name as a Role.
func NewRole(name string) Role { return Role{n: intern.Make(name)} }

func (r Role) String() string { return r.n.Value() }

// IsZero reports whether the role name is unset.
func (r Role) IsZero() bool { return r.n.IsZero() }

// Compare orders roles by name.
func (r Role) Compare(o Role) int { return r.n.Compare(o.n) }

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	*r = NewRole(string(b))
	return nil
}

// Command names the command a role executes on a transition.
type Command struct{ n intern.Name }

// NewCommand interns name as a Command.
func NewCommand(name string) Command { return Command{n: intern.Make(name)} }

func (c Command) String() string { return c.n.Value() }

// IsZero reports whether the command name is unset.
func (c Command) IsZero() bool { return c.n.IsZero() }

// Compare orders commands by name.
func (c Command) Compare(o Command) int { return c.n.Compare(o.n) }

// MarshalText implements encoding.TextMarshaler.
func (c Command) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Command) UnmarshalText(b []byte) error {
	*c = NewCommand(string(b))
	return nil
}

// EventType names the type of event a command emits. EventType ordering is
// total and stable; the analyzer uses it for map keys and unordered-pair
// normalization.
type EventType struct{ n intern.Name }

// NewEventType interns name as an EventType.
func NewEventType(name string) EventType { return EventType{n: intern.Make(name)} }

func (t EventType) String() string { return t.n.Value() }

// IsZero reports whether the event type name is unset.
func (t EventType) IsZero() bool { return t.n.IsZero() }

// Compare orders event types by name.
func (t EventType) Compare(o EventType) int { return t.n.Compare(o.n) }

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(b []byte) error {
	*t = NewEventType(string(b))
	return nil
}
