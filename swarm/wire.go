package swarm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Transition is the wire form of one labeled transition.
type Transition[L any] struct {
	Label  L     `json:"label"`
	Source State `json:"source"`
	Target State `json:"target"`
}

// ProtocolType is the wire form of a labeled transition system.
type ProtocolType[L any] struct {
	Initial     State           `json:"initial"`
	Transitions []Transition[L] `json:"transitions"`
}

// WireSwarmLabel is the external form of a swarm label. Unlike the core
// [SwarmLabel] it carries the full logType list, so ingest can report
// empty or multi-event log types against the original input.
type WireSwarmLabel struct {
	Cmd     Command     `json:"cmd"`
	LogType []EventType `json:"logType"`
	Role    Role        `json:"role"`
}

// String renders the label as "cmd@role<t1,t2,...>".
func (l WireSwarmLabel) String() string {
	names := make([]string, len(l.LogType))
	for i, t := range l.LogType {
		names[i] = t.String()
	}
	return l.Cmd.String() + "@" + l.Role.String() + "<" + strings.Join(names, ",") + ">"
}

// Core converts the wire label to the core single-event label. For
// malformed log types the event is the first entry, or the zero event
// type when the list is empty; ingest reports those as errors.
func (l WireSwarmLabel) Core() SwarmLabel {
	var event EventType
	if len(l.LogType) > 0 {
		event = l.LogType[0]
	}
	return SwarmLabel{Cmd: l.Cmd, Event: event, Role: l.Role}
}

// Wire converts a core label back to its external form.
func (l SwarmLabel) Wire() WireSwarmLabel {
	return WireSwarmLabel{Cmd: l.Cmd, LogType: []EventType{l.Event}, Role: l.Role}
}

// SwarmProtocol is the wire form of a swarm protocol.
type SwarmProtocol = ProtocolType[WireSwarmLabel]

// Machine is the wire form of a role machine.
type Machine = ProtocolType[MachineLabel]

// wireMachineLabel is the tagged JSON shape of a machine label.
type wireMachineLabel struct {
	Tag       string      `json:"tag"`
	Cmd       *Command    `json:"cmd,omitempty"`
	LogType   []EventType `json:"logType,omitempty"`
	EventType *EventType  `json:"eventType,omitempty"`
}

// MarshalJSON renders the tagged machine label wire form.
func (l MachineLabel) MarshalJSON() ([]byte, error) {
	if l.Kind == Execute {
		cmd := l.Cmd
		return json.Marshal(wireMachineLabel{
			Tag:     "Execute",
			Cmd:     &cmd,
			LogType: []EventType{l.Event},
		})
	}
	event := l.Event
	return json.Marshal(wireMachineLabel{Tag: "Input", EventType: &event})
}

// UnmarshalJSON parses the tagged machine label wire form.
func (l *MachineLabel) UnmarshalJSON(data []byte) error {
	var w wireMachineLabel
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Tag {
	case "Execute":
		if w.Cmd == nil {
			return fmt.Errorf("machine label: Execute requires cmd")
		}
		if len(w.LogType) != 1 {
			return fmt.Errorf("machine label: Execute requires exactly one logType entry, got %d", len(w.LogType))
		}
		*l = ExecuteLabel(*w.Cmd, w.LogType[0])
	case "Input":
		if w.EventType == nil {
			return fmt.Errorf("machine label: Input requires eventType")
		}
		*l = InputLabel(*w.EventType)
	default:
		return fmt.Errorf("machine label: unknown tag %q", w.Tag)
	}
	return nil
}
