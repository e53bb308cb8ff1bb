package bench

import (
	"strconv"

	"github.com/simon-lentz/swarmcheck/swarm"
)

func transition(src, dst, cmd, event, role string) swarm.Transition[swarm.WireSwarmLabel] {
	return swarm.Transition[swarm.WireSwarmLabel]{
		Source: swarm.NewState(src),
		Target: swarm.NewState(dst),
		Label: swarm.WireSwarmLabel{
			Cmd:     swarm.NewCommand(cmd),
			LogType: []swarm.EventType{swarm.NewEventType(event)},
			Role:    swarm.NewRole(role),
		},
	}
}

// InterfacePattern builds a star of n satellite protocols that all
// synchronize on a single interface command: satellite i performs its own
// step and then joins the shared c_ir transition. The composed state
// space grows exponentially in n.
func InterfacePattern(n int) []swarm.SwarmProtocol {
	protos := make([]swarm.SwarmProtocol, 0, n)
	for i := 0; i < n; i++ {
		idx := strconv.Itoa(i)
		protos = append(protos, swarm.SwarmProtocol{
			Initial: swarm.NewState("0"),
			Transitions: []swarm.Transition[swarm.WireSwarmLabel]{
				transition("0", "1", "c_r"+idx, "e_r"+idx, "R"+idx),
				transition("1", "2", "c_ir", "e_ir", "IR"),
			},
		})
	}
	return protos
}

// ChainPattern builds a linear chain of n protocols where protocol i
// hands over to protocol i+1 through a dedicated interface role, so each
// adjacent pair shares exactly one role.
func ChainPattern(n int) []swarm.SwarmProtocol {
	protos := make([]swarm.SwarmProtocol, 0, n)
	for i := 1; i <= n; i++ {
		idx := strconv.Itoa(i)
		var transitions []swarm.Transition[swarm.WireSwarmLabel]
		if i == 1 {
			transitions = append(transitions, transition("0", "1", "c_1", "e_1", "R1"))
		} else {
			prev := strconv.Itoa(i - 1)
			transitions = append(transitions, transition("0", "1", "c_if"+prev, "e_if"+prev, "IR"+prev))
		}
		transitions = append(transitions, transition("1", "2", "c_if"+idx, "e_if"+idx, "IR"+idx))
		protos = append(protos, swarm.SwarmProtocol{
			Initial:     swarm.NewState("0"),
			Transitions: transitions,
		})
	}
	return protos
}
