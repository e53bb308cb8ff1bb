package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/simon-lentz/swarmcheck/swarm"
)

// Adapter decodes the analyzer's wire formats from JSON.
//
// By default input is preprocessed with tidwall/jsonc, so comments and
// trailing commas are tolerated; [WithStrictJSON] disables the
// preprocessing. Decoding errors are ordinary Go errors: a payload that
// does not parse is an input-shape problem, not an analysis finding.
type Adapter struct {
	strictJSON bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStrictJSON requires standard JSON: no comments, no trailing commas.
func WithStrictJSON(strict bool) Option {
	return func(a *Adapter) { a.strictJSON = strict }
}

// New creates an Adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) decode(data []byte, v any, what string) error {
	if !a.strictJSON {
		data = jsonc.ToJSON(data)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parsing %s: %w", what, err)
	}
	return nil
}

// ParseProtocol decodes one swarm protocol.
func (a *Adapter) ParseProtocol(data []byte) (swarm.SwarmProtocol, error) {
	var proto swarm.SwarmProtocol
	err := a.decode(data, &proto, "swarm protocol")
	return proto, err
}

// ParseProtocols decodes a JSON array of swarm protocols.
func (a *Adapter) ParseProtocols(data []byte) ([]swarm.SwarmProtocol, error) {
	var protos []swarm.SwarmProtocol
	err := a.decode(data, &protos, "swarm protocols")
	return protos, err
}

// ParseSubscriptions decodes a role-to-events subscription map.
func (a *Adapter) ParseSubscriptions(data []byte) (swarm.Subscriptions, error) {
	var subs swarm.Subscriptions
	err := a.decode(data, &subs, "subscriptions")
	return subs, err
}

// ParseMachine decodes one role machine.
func (a *Adapter) ParseMachine(data []byte) (swarm.Machine, error) {
	var m swarm.Machine
	err := a.decode(data, &m, "machine")
	return m, err
}
