package subscription

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

func proto4(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "c_ir_0", "logType": ["e_ir_0"], "role": "IR" } },
			{ "source": "1", "target": "2", "label": { "cmd": "c_ir_1", "logType": ["e_ir_1"], "role": "IR" } },
			{ "source": "2", "target": "1", "label": { "cmd": "c_r0_0", "logType": ["e_r0_0"], "role": "R0" } },
			{ "source": "1", "target": "3", "label": { "cmd": "c_r0_1", "logType": ["e_r0_1"], "role": "R0" } }
		]
	}`)
}

func proto5(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "c_ir_0", "logType": ["e_ir_0"], "role": "IR" } },
			{ "source": "1", "target": "2", "label": { "cmd": "c_r1_0", "logType": ["e_r1_0"], "role": "R1" } },
			{ "source": "2", "target": "3", "label": { "cmd": "c_ir_1", "logType": ["e_ir_1"], "role": "IR" } }
		]
	}`)
}

func loopingProto2(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "cmd_a", "logType": ["a"], "role": "R1" } },
			{ "source": "0", "target": "2", "label": { "cmd": "cmd_b", "logType": ["b"], "role": "R2" } },
			{ "source": "2", "target": "3", "label": { "cmd": "cmd_c", "logType": ["c"], "role": "R3" } },
			{ "source": "3", "target": "4", "label": { "cmd": "cmd_d", "logType": ["d"], "role": "R4" } },
			{ "source": "4", "target": "2", "label": { "cmd": "cmd_e", "logType": ["e"], "role": "R5" } }
		]
	}`)
}

// Two satellite protocols whose independent first steps join on the
// shared c_ir transition: e_r0 and e_r1 are concurrent predecessors of
// the joining event e_ir.
func joinChain(t *testing.T) []swarm.SwarmProtocol {
	return []swarm.SwarmProtocol{
		parseProto(t, `{
			"initial": "0",
			"transitions": [
				{ "source": "0", "target": "1", "label": { "cmd": "c_r0", "logType": ["e_r0"], "role": "R0" } },
				{ "source": "1", "target": "2", "label": { "cmd": "c_ir", "logType": ["e_ir"], "role": "IR" } }
			]
		}`),
		parseProto(t, `{
			"initial": "0",
			"transitions": [
				{ "source": "0", "target": "1", "label": { "cmd": "c_r1", "logType": ["e_r1"], "role": "R1" } },
				{ "source": "1", "target": "2", "label": { "cmd": "c_ir", "logType": ["e_ir"], "role": "IR" } }
			]
		}`),
	}
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
