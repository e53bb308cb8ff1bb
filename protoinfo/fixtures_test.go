package protoinfo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/swarmcheck/swarm"
)

func parseProto(t *testing.T, raw string) swarm.SwarmProtocol {
	t.Helper()
	var proto swarm.SwarmProtocol
	require.NoError(t, json.Unmarshal([]byte(raw), &proto))
	return proto
}

// Warehouse delivery: T requests parts, FL fetches, D closes the day.
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

// Car factory: T delivers the requested part, F builds.
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

// Quality control around the factory; both accept and reject end in the
// same state, so there is no observable branch.
func proto3(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "observe", "logType": ["report1"], "role": "TR" } },
			{ "source": "1", "target": "2", "label": { "cmd": "build", "logType": ["car"], "role": "F" } },
			{ "source": "2", "target": "3", "label": { "cmd": "test", "logType": ["report2"], "role": "TR" } },
			{ "source": "3", "target": "4", "label": { "cmd": "accept", "logType": ["ok"], "role": "QCR" } },
			{ "source": "3", "target": "4", "label": { "cmd": "reject", "logType": ["notOk"], "role": "QCR" } }
		]
	}`)
}

// Two protocols interfacing on IR with a loop on the left side.
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

// Two event types in close, request twice, get emits nothing.
func malformedProto1(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "request", "logType": ["partID"], "role": "T" } },
			{ "source": "1", "target": "2", "label": { "cmd": "get", "logType": [], "role": "FL" } },
			{ "source": "2", "target": "0", "label": { "cmd": "request", "logType": ["part"], "role": "T" } },
			{ "source": "0", "target": "0", "label": { "cmd": "close", "logType": ["time", "time2"], "role": "D" } }
		]
	}`)
}

// The declared initial state appears on no transition.
func malformedProto2(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "1", "target": "2", "label": { "cmd": "get", "logType": ["pos"], "role": "FL" } },
			{ "source": "2", "target": "3", "label": { "cmd": "deliver", "logType": ["partID"], "role": "T" } }
		]
	}`)
}

// Two disconnected islands besides the initial component.
func malformedProto3(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "request", "logType": ["partID"], "role": "T" } },
			{ "source": "2", "target": "3", "label": { "cmd": "deliver", "logType": ["part"], "role": "T" } },
			{ "source": "4", "target": "5", "label": { "cmd": "build", "logType": ["car"], "role": "F" } }
		]
	}`)
}

// partID emitted twice, pos under two commands, request on three edges.
func confusionfulProto1(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "request", "logType": ["partID"], "role": "T" } },
			{ "source": "0", "target": "0", "label": { "cmd": "request", "logType": ["partID"], "role": "T" } },
			{ "source": "1", "target": "2", "label": { "cmd": "get", "logType": ["pos"], "role": "FL" } },
			{ "source": "2", "target": "0", "label": { "cmd": "request", "logType": ["pos"], "role": "T" } },
			{ "source": "0", "target": "0", "label": { "cmd": "close", "logType": ["time"], "role": "D" } }
		]
	}`)
}

// The 2-3-4 cycle cannot reach the terminal state 1.
func loopingProto1(t *testing.T) swarm.SwarmProtocol {
	return parseProto(t, `{
		"initial": "0",
		"transitions": [
			{ "source": "0", "target": "1", "label": { "cmd": "cmd_a", "logType": ["a"], "role": "R1" } },
			{ "source": "0", "target": "2", "label": { "cmd": "cmd_b", "logType": ["b"], "role": "R2" } },
			{ "source": "2", "target": "3", "label": { "cmd": "cmd_c", "logType": ["c"], "role": "R1" } },
			{ "source": "3", "target": "4", "label": { "cmd": "cmd_d", "logType": ["d"], "role": "R2" } },
			{ "source": "4", "target": "2", "label": { "cmd": "cmd_e", "logType": ["e"], "role": "R1" } }
		]
	}`)
}

func warehouseChain(t *testing.T) []swarm.SwarmProtocol {
	return []swarm.SwarmProtocol{proto1(t), proto2(t)}
}

func events(names ...string) []swarm.EventType {
	out := make([]swarm.EventType, len(names))
	for i, n := range names {
		out[i] = swarm.NewEventType(n)
	}
	return out
}
