package bench

import (
	"github.com/google/uuid"

	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// Version names the subscription-synthesis algorithm a sample was run
// under.
type Version string

const (
	// VersionExact expands the composition and computes the least
	// subscription.
	VersionExact Version = "CompositionalExact"
	// VersionOverapprox runs the chain-level overapproximation.
	VersionOverapprox Version = "CompositionalOverapprox"
)

// Input is one benchmark sample: a protocol chain keyed by the size of
// its composed state space and a stable id.
type Input struct {
	ID                string                `json:"id"`
	StateSpaceSize    int                   `json:"state_space_size"`
	NumberOfEdges     int                   `json:"number_of_edges"`
	InterfacingSwarms []swarm.SwarmProtocol `json:"interfacing_swarms"`
}

// SubSizeOutput records the subscription a sample produced under one
// algorithm version.
type SubSizeOutput struct {
	ID             string              `json:"id"`
	StateSpaceSize int                 `json:"state_space_size"`
	NumberOfEdges  int                 `json:"number_of_edges"`
	Subscriptions  swarm.Subscriptions `json:"subscriptions"`
	Version        Version             `json:"version"`
	Granularity    string              `json:"granularity,omitempty"`
}

// NewInput keys a protocol chain by the size of its explicit composition
// and assigns a fresh stable id. Chains that do not compose yield a zero
// state space.
func NewInput(protos []swarm.SwarmProtocol) Input {
	in := Input{ID: uuid.NewString(), InterfacingSwarms: protos}
	g, _, report := protoinfo.ComposeProtocols(protos)
	if report.OK() && g != nil {
		in.StateSpaceSize = g.NodeCount()
		in.NumberOfEdges = g.EdgeCount()
	}
	return in
}

// SubscriptionSize counts the subscribed events over all roles.
func SubscriptionSize(subs swarm.Subscriptions) int {
	total := 0
	for _, set := range subs {
		total += set.Len()
	}
	return total
}
