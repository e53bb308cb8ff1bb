package bench

import (
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/simon-lentz/swarmcheck/subscription"
	"github.com/simon-lentz/swarmcheck/swarm"
)

var log = commonlog.GetLogger("swarmcheck.bench")

// Runner executes subscription-size experiments over benchmark samples.
type Runner struct {
	granularities []subscription.Granularity
}

// NewRunner creates a Runner measuring the given overapproximation
// granularities next to the exact algorithm. With no granularities, only
// TwoStep is measured.
func NewRunner(granularities ...subscription.Granularity) *Runner {
	if len(granularities) == 0 {
		granularities = []subscription.Granularity{subscription.TwoStep}
	}
	return &Runner{granularities: granularities}
}

// SubscriptionSizes runs every sample through the exact solver and each
// configured granularity of the overapproximating solver, from an empty
// seed. Samples whose chain does not pass the pre-checks are skipped with
// a log line.
func (r *Runner) SubscriptionSizes(inputs []Input) []SubSizeOutput {
	var outputs []SubSizeOutput
	for _, in := range inputs {
		seed := swarm.NewSubscriptions()

		subs, report := subscription.ExactWellFormedSub(in.InterfacingSwarms, seed)
		if !report.OK() {
			log.Errorf("sample %s rejected: %d findings", in.ID, len(report.Messages()))
			continue
		}
		outputs = append(outputs, SubSizeOutput{
			ID:             in.ID,
			StateSpaceSize: in.StateSpaceSize,
			NumberOfEdges:  in.NumberOfEdges,
			Subscriptions:  subs,
			Version:        VersionExact,
		})
		log.Infof("sample %s exact: %d events over %d states",
			in.ID, SubscriptionSize(subs), in.StateSpaceSize)

		for _, granularity := range r.granularities {
			subs, report := subscription.OverapproxWellFormedSub(in.InterfacingSwarms, seed, granularity)
			if !report.OK() {
				log.Errorf("sample %s rejected under %s: %d findings",
					in.ID, granularity, len(report.Messages()))
				continue
			}
			outputs = append(outputs, SubSizeOutput{
				ID:             in.ID,
				StateSpaceSize: in.StateSpaceSize,
				NumberOfEdges:  in.NumberOfEdges,
				Subscriptions:  subs,
				Version:        VersionOverapprox,
				Granularity:    granularity.String(),
			})
			log.Infof("sample %s %s: %d events", in.ID, granularity, SubscriptionSize(subs))
		}
	}
	return outputs
}
