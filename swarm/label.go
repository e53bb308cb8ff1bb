package swarm

// SwarmLabel labels one protocol transition: role executes cmd, emitting a
// single event of type Event. The external format admits a list of emitted
// event types; ingest rejects any length other than one, so the core label
// always carries exactly one.
type SwarmLabel struct {
	Cmd   Command
	Event EventType
	Role  Role
}

// EventType returns the emitted event type.
func (l SwarmLabel) EventType() EventType { return l.Event }

// String renders the label as "cmd@role<event>".
func (l SwarmLabel) String() string {
	return l.Cmd.String() + "@" + l.Role.String() + "<" + l.Event.String() + ">"
}

// Compare orders labels by command, then event type, then role.
func (l SwarmLabel) Compare(o SwarmLabel) int {
	if c := l.Cmd.Compare(o.Cmd); c != 0 {
		return c
	}
	if c := l.Event.Compare(o.Event); c != 0 {
		return c
	}
	return l.Role.Compare(o.Role)
}

// MachineLabelKind discriminates the two machine transition kinds.
type MachineLabelKind uint8

const (
	// Execute marks a self-loop on which the machine may execute a command.
	Execute MachineLabelKind = iota
	// Input marks a state advance on consuming an event.
	Input
)

// MachineLabel labels one machine transition. Execute labels carry the
// command and its emitted event type and must be self-loops; Input labels
// carry the consumed event type and advance the state.
type MachineLabel struct {
	Kind  MachineLabelKind
	Cmd   Command // set for Execute only
	Event EventType
}

// ExecuteLabel builds an Execute machine label.
func ExecuteLabel(cmd Command, event EventType) MachineLabel {
	return MachineLabel{Kind: Execute, Cmd: cmd, Event: event}
}

// InputLabel builds an Input machine label.
func InputLabel(event EventType) MachineLabel {
	return MachineLabel{Kind: Input, Event: event}
}

// EventType returns the event type the label emits or consumes.
func (l MachineLabel) EventType() EventType { return l.Event }

// String renders Execute labels as "cmd/event" and Input labels as "event?".
func (l MachineLabel) String() string {
	if l.Kind == Execute {
		return l.Cmd.String() + "/" + l.Event.String()
	}
	return l.Event.String() + "?"
}

// Compare orders Execute labels before Input labels, then by command and
// event type.
func (l MachineLabel) Compare(o MachineLabel) int {
	if l.Kind != o.Kind {
		return int(l.Kind) - int(o.Kind)
	}
	if c := l.Cmd.Compare(o.Cmd); c != 0 {
		return c
	}
	return l.Event.Compare(o.Event)
}

// LabelTriple is the (command, event type, role) content of a swarm label,
// used when comparing label sets across protocols.
type LabelTriple struct {
	Cmd   Command
	Event EventType
	Role  Role
}

// Triple returns the label's (command, event type, role) content.
func (l SwarmLabel) Triple() LabelTriple {
	return LabelTriple{Cmd: l.Cmd, Event: l.Event, Role: l.Role}
}

// Compare orders triples by command, then event type, then role.
func (t LabelTriple) Compare(o LabelTriple) int {
	if c := t.Cmd.Compare(o.Cmd); c != 0 {
		return c
	}
	if c := t.Event.Compare(o.Event); c != 0 {
		return c
	}
	return t.Role.Compare(o.Role)
}
