package machine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/swarmcheck/internal/sets"
	"github.com/simon-lentz/swarmcheck/swarm"
)

func parseProto(t *testing.T, raw string) swarm.SwarmProtocol {
	t.Helper()
	var proto swarm.SwarmProtocol
	require.NoError(t, json.Unmarshal([]byte(raw), &proto))
	return proto
}

func tireProto(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "request", "logType": ["tireID"], "role": "C" } },
			{ "source": "1", "target": "2", "label": { "cmd": "retrieve", "logType": ["position"], "role": "W" } },
			{ "source": "2", "target": "3", "label": { "cmd": "receive", "logType": ["tire"], "role": "C" } },
			{ "source": "3", "target": "4", "label": { "cmd": "build", "logType": ["car"], "role": "F" } }
		]
	}`)
}

func proto1(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "request", "logType": ["partID"], "role": "T" } },
			{ "source": "1", "target": "2", "label": { "cmd": "get", "logType": ["pos"], "role": "FL" } },
			{ "source": "2", "target": "0", "label": { "cmd": "deliver", "logType": ["part"], "role": "T" } },
			{ "source": "0", "target": "3", "label": { "cmd": "close", "logType": ["time"], "role": "D" } }
		]
	}`)
}

func proto2(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "request", "logType": ["partID"], "role": "T" } },
			{ "source": "1", "target": "2", "label": { "cmd": "deliver", "logType": ["part"], "role": "T" } },
			{ "source": "2", "target": "3", "label": { "cmd": "build", "logType": ["car"], "role": "F" } }
		]
	}`)
}

func warehouseChain(t *testing.T) []swarm.SwarmProtocol {
	return []swarm.SwarmProtocol{proto1(t), proto2(t)}
}

func subsOf(pairs map[string][]string) swarm.Subscriptions {
	subs := swarm.NewSubscriptions()
	for role, events := range pairs {
		set := sets.New[swarm.EventType]()
		for _, e := range events {
			set.Add(swarm.NewEventType(e))
		}
		subs[swarm.NewRole(role)] = set
	}
	return subs
}

// transitionSet renders a machine's transitions as comparable strings.
func transitionSet(m swarm.Machine) []string {
	out := make([]string, 0, len(m.Transitions))
	for _, tr := range m.Transitions {
		out = append(out, tr.Source.String()+" --"+tr.Label.String()+"--> "+tr.Target.String())
	}
	return out
}
