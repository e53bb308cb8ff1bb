// Command swarmcheck runs the analyzer operations over JSON files.
//
// Protocols, subscriptions and machines arrive as files in the wire
// format; the selected operation's envelope is printed to stdout. The
// command is a thin collaborator: all analysis lives in the library.
//
// Usage:
//
//	swarmcheck -op check -protocols chain.json -subs subs.json
//	swarmcheck -op sub-exact -protocols chain.json
//	swarmcheck -op sub-overapprox -protocols chain.json -granularity TwoStep
//	swarmcheck -op project -protocols chain.json -subs subs.json -role F -minimize
//	swarmcheck -op projection-info -protocols chain.json -subs subs.json -role F -k 1 -machine m.json
//	swarmcheck -op compose -protocols chain.json
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/simon-lentz/swarmcheck"
	adapterjson "github.com/simon-lentz/swarmcheck/adapter/json"
	"github.com/simon-lentz/swarmcheck/subscription"
	"github.com/simon-lentz/swarmcheck/swarm"
)

func main() {
	var (
		opName      = flag.String("op", "check", "operation: check, check-projection, sub, sub-exact, sub-overapprox, project, projection-info, compose")
		protosPath  = flag.String("protocols", "", "path to a JSON array of swarm protocols (or a single protocol for single-protocol ops)")
		subsPath    = flag.String("subs", "", "path to a subscriptions JSON object (optional; empty seed when absent)")
		machinePath = flag.String("machine", "", "path to a machine JSON object")
		roleName    = flag.String("role", "", "role to project")
		granName    = flag.String("granularity", "TwoStep", "granularity: Fine, Medium, Coarse, TwoStep")
		k           = flag.Int("k", 0, "protocol index for projection-info")
		minimize    = flag.Bool("minimize", false, "minimize per-protocol projections")
		expand      = flag.Bool("expand", false, "project the explicit composition instead of composing projections")
		strict      = flag.Bool("strict", false, "reject JSON comments and trailing commas")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))

	if err := run(*opName, *protosPath, *subsPath, *machinePath, *roleName, *granName, *k, *minimize, *expand, *strict, logger); err != nil {
		logger.Error("swarmcheck failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(opName, protosPath, subsPath, machinePath, roleName, granName string, k int, minimize, expand, strict bool, logger *slog.Logger) error {
	if protosPath == "" {
		return fmt.Errorf("missing -protocols")
	}

	adapter := adapterjson.New(adapterjson.WithStrictJSON(strict))
	analyzer := swarmcheck.New(swarmcheck.WithLogger(logger))

	protoData, err := os.ReadFile(protosPath)
	if err != nil {
		return err
	}
	protos, err := adapter.ParseProtocols(protoData)
	if err != nil {
		// Single-protocol files are accepted everywhere a chain is.
		proto, singleErr := adapter.ParseProtocol(protoData)
		if singleErr != nil {
			return err
		}
		protos = []swarm.SwarmProtocol{proto}
	}

	subs := swarm.NewSubscriptions()
	if subsPath != "" {
		subsData, err := os.ReadFile(subsPath)
		if err != nil {
			return err
		}
		if subs, err = adapter.ParseSubscriptions(subsData); err != nil {
			return err
		}
	}

	var machineWire swarm.Machine
	if machinePath != "" {
		machineData, err := os.ReadFile(machinePath)
		if err != nil {
			return err
		}
		if machineWire, err = adapter.ParseMachine(machineData); err != nil {
			return err
		}
	}

	role := swarm.NewRole(roleName)

	var out any
	switch opName {
	case "check":
		if len(protos) == 1 {
			out = analyzer.CheckSwarm(protos[0], subs)
		} else {
			out = analyzer.CheckComposedSwarm(protos, subs)
		}
	case "check-projection":
		if len(protos) == 1 {
			out = analyzer.CheckProjection(protos[0], subs, role, machineWire)
		} else {
			out = analyzer.CheckComposedProjection(protos, subs, role, machineWire)
		}
	case "sub":
		if len(protos) != 1 {
			return fmt.Errorf("op sub takes a single protocol; use sub-exact for chains")
		}
		out = analyzer.WellFormedSub(protos[0], subs)
	case "sub-exact":
		out = analyzer.ExactWellFormedSub(protos, subs)
	case "sub-overapprox":
		granularity, err := subscription.ParseGranularity(granName)
		if err != nil {
			return err
		}
		out = analyzer.OverapproximatedWellFormedSub(protos, subs, granularity)
	case "project":
		out = analyzer.Project(protos, subs, role, minimize, expand)
	case "projection-info":
		out = analyzer.ProjectionInformation(role, protos, k, subs, machineWire, minimize)
	case "compose":
		out = analyzer.ComposeProtocols(protos)
	default:
		return fmt.Errorf("unknown operation %q", opName)
	}

	data, err := adapterjson.Write(out)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
