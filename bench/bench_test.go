package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/swarmcheck/subscription"
)

func TestInterfacePatternComposes(t *testing.T) {
	in := NewInput(InterfacePattern(3))
	assert.NotEmpty(t, in.ID)
	assert.Positive(t, in.StateSpaceSize)
	assert.Positive(t, in.NumberOfEdges)
}

func TestChainPatternComposes(t *testing.T) {
	in := NewInput(ChainPattern(4))
	assert.Positive(t, in.StateSpaceSize)
}

func TestInputIDsAreUnique(t *testing.T) {
	a := NewInput(ChainPattern(2))
	b := NewInput(ChainPattern(2))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSubscriptionSizes(t *testing.T) {
	runner := NewRunner(subscription.Coarse)
	outputs := runner.SubscriptionSizes([]Input{NewInput(ChainPattern(3))})
	require.Len(t, outputs, 2)

	var exactSize, coarseSize int
	for _, out := range outputs {
		switch out.Version {
		case VersionExact:
			exactSize = SubscriptionSize(out.Subscriptions)
		case VersionOverapprox:
			coarseSize = SubscriptionSize(out.Subscriptions)
			assert.Equal(t, "Coarse", out.Granularity)
		}
	}
	assert.Positive(t, exactSize)
	assert.GreaterOrEqual(t, coarseSize, exactSize)
}
