package swarmcheck

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/simon-lentz/swarmcheck/diag"
	"github.com/simon-lentz/swarmcheck/graph"
	"github.com/simon-lentz/swarmcheck/internal/trace"
	"github.com/simon-lentz/swarmcheck/machine"
	"github.com/simon-lentz/swarmcheck/protoinfo"
	"github.com/simon-lentz/swarmcheck/subscription"
	"github.com/simon-lentz/swarmcheck/swarm"
)

// Analyzer is the operations facade. Every method returns an envelope and
// never panics on analysis findings; collaborators decide how to render
// or persist the results.
type Analyzer struct {
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger attaches a logger for operation-boundary tracing. The
// default is no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAnalyzer = New()

// CheckSwarm verifies one protocol against a subscription.
func (a *Analyzer) CheckSwarm(proto swarm.SwarmProtocol, subs swarm.Subscriptions) CheckResult {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.check_swarm")
	defer op.End(nil)
	return checkResult(subscription.CheckSwarm(proto, subs))
}

// CheckComposedSwarm verifies a protocol chain against a subscription.
func (a *Analyzer) CheckComposedSwarm(protos []swarm.SwarmProtocol, subs swarm.Subscriptions) CheckResult {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.check_composed_swarm",
		slog.Int("protocols", len(protos)))
	defer op.End(nil)
	return checkResult(subscription.CheckComposedSwarm(protos, subs))
}

// WellFormedSub computes the least well-formed subscription of one
// protocol extending the seed.
func (a *Analyzer) WellFormedSub(proto swarm.SwarmProtocol, seed swarm.Subscriptions) DataResult[swarm.Subscriptions] {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.well_formed_sub")
	defer op.End(nil)
	subs, report := subscription.WellFormedSub(proto, seed)
	if !report.OK() {
		return errData[swarm.Subscriptions](report.Messages())
	}
	return okData(subs)
}

// ExactWellFormedSub computes the least well-formed subscription of a
// protocol chain extending the seed, over the explicit composition.
func (a *Analyzer) ExactWellFormedSub(protos []swarm.SwarmProtocol, seed swarm.Subscriptions) DataResult[swarm.Subscriptions] {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.exact_well_formed_sub",
		slog.Int("protocols", len(protos)))
	defer op.End(nil)
	subs, report := subscription.ExactWellFormedSub(protos, seed)
	if !report.OK() {
		return errData[swarm.Subscriptions](report.Messages())
	}
	return okData(subs)
}

// OverapproximatedWellFormedSub computes a well-formed subscription of a
// protocol chain without expanding the composition.
func (a *Analyzer) OverapproximatedWellFormedSub(protos []swarm.SwarmProtocol, seed swarm.Subscriptions, granularity subscription.Granularity) DataResult[swarm.Subscriptions] {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.overapproximated_well_formed_sub",
		slog.Int("protocols", len(protos)), slog.String("granularity", granularity.String()))
	defer op.End(nil)
	subs, report := subscription.OverapproxWellFormedSub(protos, seed, granularity)
	if !report.OK() {
		return errData[swarm.Subscriptions](report.Messages())
	}
	return okData(subs)
}

// CheckProjection verifies a candidate machine against the canonical
// projection of one protocol for a role.
func (a *Analyzer) CheckProjection(proto swarm.SwarmProtocol, subs swarm.Subscriptions, role swarm.Role, m swarm.Machine) CheckResult {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.check_projection",
		slog.String("role", role.String()))
	defer op.End(nil)

	ps := protoinfo.Ingest(proto)
	if ps.Initial == graph.NoNode {
		return errCheck(ps.Result.Messages())
	}
	errors := ps.Result.Messages()

	proj, projInitial := machine.Project(ps.Graph, ps.Initial, subs, role, false)
	mg, mInitial, issues := machine.FromWire(m)
	for _, issue := range issues {
		errors = append(errors, issue.Message())
	}
	if mInitial == graph.NoNode {
		errors = append(errors, "initial machine state has no transitions")
		return errCheck(errors)
	}
	if len(errors) > 0 {
		return errCheck(errors)
	}

	for _, issue := range machine.Equivalent(proj, projInitial, mg, mInitial) {
		errors = append(errors, issue.Message())
	}
	if len(errors) > 0 {
		return errCheck(errors)
	}
	return okCheck()
}

// CheckComposedProjection verifies a candidate machine against the
// combined projection of a protocol chain for a role.
func (a *Analyzer) CheckComposedProjection(protos []swarm.SwarmProtocol, subs swarm.Subscriptions, role swarm.Role, m swarm.Machine) CheckResult {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.check_composed_projection",
		slog.String("role", role.String()), slog.Int("protocols", len(protos)))
	defer op.End(nil)

	pi := protoinfo.FromProtocols(protos)
	if !pi.NoErrors() {
		return errCheck(pi.Report().Messages())
	}

	proj, projInitial := machine.ProjectCombine(pi, subs, role, false)
	mg, mInitial, issues := machine.FromWire(m)
	var errors []string
	for _, issue := range issues {
		errors = append(errors, issue.Message())
	}
	if mInitial == graph.NoNode {
		errors = append(errors, "initial machine state has no transitions")
		return errCheck(errors)
	}
	if len(errors) > 0 {
		return errCheck(errors)
	}

	for _, issue := range machine.Equivalent(proj, projInitial, mg, mInitial) {
		errors = append(errors, issue.Message())
	}
	if len(errors) > 0 {
		return errCheck(errors)
	}
	return okCheck()
}

// Project derives the machine of role from a protocol chain. With expand
// set the chain is expanded into its explicit composition and projected
// once; otherwise each protocol is projected separately and the
// projections are composed.
func (a *Analyzer) Project(protos []swarm.SwarmProtocol, subs swarm.Subscriptions, role swarm.Role, minimize, expand bool) DataResult[swarm.Machine] {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.project",
		slog.String("role", role.String()), slog.Bool("minimize", minimize), slog.Bool("expand", expand))
	defer op.End(nil)

	if expand {
		g, initial, report := protoinfo.ComposeProtocols(protos)
		if !report.OK() {
			return errData[swarm.Machine](report.Messages())
		}
		proj, projInitial := machine.Project(g, initial, subs, role, minimize)
		return okData(machine.ToWire(proj, projInitial))
	}

	pi := protoinfo.FromProtocols(protos)
	if !pi.NoErrors() {
		return errData[swarm.Machine](pi.Report().Messages())
	}
	proj, projInitial := machine.ProjectCombine(pi, subs, role, minimize)
	return okData(machine.ToWire(proj, projInitial))
}

// ProjectionInformation overlays an existing machine of role onto the
// k-th protocol of the chain, re-composes, and explains the branch and
// join structure of the result.
func (a *Analyzer) ProjectionInformation(role swarm.Role, protos []swarm.SwarmProtocol, k int, subs swarm.Subscriptions, m swarm.Machine, minimize bool) DataResult[machine.ProjectionInfo] {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.projection_information",
		slog.String("role", role.String()), slog.Int("k", k))
	defer op.End(nil)

	pi := protoinfo.FromProtocols(protos)
	if !pi.NoErrors() {
		return errData[machine.ProjectionInfo](pi.Report().Messages())
	}

	mg, mInitial, issues := machine.FromWire(m)
	var errors []string
	for _, issue := range issues {
		errors = append(errors, issue.Message())
	}
	if mInitial == graph.NoNode {
		errors = append(errors, "initial machine state has no transitions")
		return errData[machine.ProjectionInfo](errors)
	}
	if len(errors) > 0 {
		return errData[machine.ProjectionInfo](errors)
	}

	info, ok := machine.ProjectionInformation(pi, subs, role, mg, mInitial, k, minimize)
	if !ok {
		return errData[machine.ProjectionInfo]([]string{"invalid index " + strconv.Itoa(k)})
	}
	return okData(*info)
}

// ComposeProtocols expands a chain into one protocol description.
func (a *Analyzer) ComposeProtocols(protos []swarm.SwarmProtocol) DataResult[swarm.SwarmProtocol] {
	op := trace.Begin(context.Background(), a.logger, "swarmcheck.compose_protocols",
		slog.Int("protocols", len(protos)))
	defer op.End(nil)

	g, initial, report := protoinfo.ComposeProtocols(protos)
	if !report.OK() {
		return errData[swarm.SwarmProtocol](report.Messages())
	}
	return okData(protoinfo.ToWire(g, initial))
}

func checkResult(report diag.Report) CheckResult {
	if report.OK() {
		return okCheck()
	}
	return errCheck(report.Messages())
}

// Package-level convenience wrappers over a default Analyzer.

// CheckSwarm verifies one protocol against a subscription.
func CheckSwarm(proto swarm.SwarmProtocol, subs swarm.Subscriptions) CheckResult {
	return defaultAnalyzer.CheckSwarm(proto, subs)
}

// CheckComposedSwarm verifies a protocol chain against a subscription.
func CheckComposedSwarm(protos []swarm.SwarmProtocol, subs swarm.Subscriptions) CheckResult {
	return defaultAnalyzer.CheckComposedSwarm(protos, subs)
}

// WellFormedSub computes the least well-formed subscription of one
// protocol extending the seed.
func WellFormedSub(proto swarm.SwarmProtocol, seed swarm.Subscriptions) DataResult[swarm.Subscriptions] {
	return defaultAnalyzer.WellFormedSub(proto, seed)
}

// ExactWellFormedSub computes the least well-formed subscription of a
// chain extending the seed, over the explicit composition.
func ExactWellFormedSub(protos []swarm.SwarmProtocol, seed swarm.Subscriptions) DataResult[swarm.Subscriptions] {
	return defaultAnalyzer.ExactWellFormedSub(protos, seed)
}

// OverapproximatedWellFormedSub computes a well-formed subscription of a
// chain without expanding the composition.
func OverapproximatedWellFormedSub(protos []swarm.SwarmProtocol, seed swarm.Subscriptions, granularity subscription.Granularity) DataResult[swarm.Subscriptions] {
	return defaultAnalyzer.OverapproximatedWellFormedSub(protos, seed, granularity)
}

// CheckProjection verifies a candidate machine against the canonical
// projection of one protocol for a role.
func CheckProjection(proto swarm.SwarmProtocol, subs swarm.Subscriptions, role swarm.Role, m swarm.Machine) CheckResult {
	return defaultAnalyzer.CheckProjection(proto, subs, role, m)
}

// CheckComposedProjection verifies a candidate machine against the
// combined projection of a chain for a role.
func CheckComposedProjection(protos []swarm.SwarmProtocol, subs swarm.Subscriptions, role swarm.Role, m swarm.Machine) CheckResult {
	return defaultAnalyzer.CheckComposedProjection(protos, subs, role, m)
}

// Project derives the machine of role from a protocol chain.
func Project(protos []swarm.SwarmProtocol, subs swarm.Subscriptions, role swarm.Role, minimize, expand bool) DataResult[swarm.Machine] {
	return defaultAnalyzer.Project(protos, subs, role, minimize, expand)
}

// ProjectionInformation overlays an existing machine onto the k-th
// protocol of the chain and explains the re-composed projection.
func ProjectionInformation(role swarm.Role, protos []swarm.SwarmProtocol, k int, subs swarm.Subscriptions, m swarm.Machine, minimize bool) DataResult[machine.ProjectionInfo] {
	return defaultAnalyzer.ProjectionInformation(role, protos, k, subs, m, minimize)
}

// ComposeProtocols expands a chain into one protocol description.
func ComposeProtocols(protos []swarm.SwarmProtocol) DataResult[swarm.SwarmProtocol] {
	return defaultAnalyzer.ComposeProtocols(protos)
}
