// Package pkg provides the core libraries for railplan schematic
// conversion.
//
// # Overview
//
// Railplan transforms geographically positioned railway topologies into
// schematic overviews: every track runs horizontally or bends once into
// a 45° diagonal, main tracks form continuous horizontal spines, and
// signals sit on a regular grid along their edges. The pkg directory
// contains reusable Go libraries organized into three main areas:
//
//  1. Data Model ([topology])
//  2. Layout Engine ([schematic])
//  3. Pipeline & Infrastructure ([pipeline], [cache], [api], [errors],
//     [observability])
//
// # Architecture
//
// The typical data flow through railplan:
//
//	Topology JSON
//	      ↓
//	 [topology] package (decode + validate)
//	      ↓
//	 [schematic] package (two-pass layout + signal placement)
//	      ↓
//	 [topology] package (encode, deterministic)
//
// [pipeline] wraps the flow with caching and logging; [api] exposes it
// over HTTP; the CLI drives both.
//
// # Quick Start
//
// Convert a topology in memory:
//
//	import (
//	    "github.com/matzehuels/railplan/pkg/schematic"
//	    "github.com/matzehuels/railplan/pkg/topology"
//	)
//
//	top, _ := topology.ReadFile("station.json")
//	_, err := schematic.Convert(top, schematic.Options{ScaleFactor: 4.5})
//	if err != nil {
//	    // top is partially rewritten; convert a copy if you need the input
//	}
//	_ = topology.WriteFile(top, "station.schematic.json")
//
// Or run the cached pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, _ := runner.Execute(ctx, topologyJSON, pipeline.Options{})
//
// # Main Packages
//
// [topology] - The rail network object model: nodes, edges, signals, and
// tracks keyed by UUID, with deterministic JSON serialization.
//
// [schematic] - The layout engine: working-graph construction, start-node
// ordering via a minimum cover over planarity-constrained reachability,
// the vertical and horizontal positioning passes, track post-processing,
// and Hungarian-assignment signal placement.
//
// [pipeline] - The load → convert → emit runner with content-addressed
// caching of conversion results.
//
// [cache] - Cache backends (file, Redis, null) and key derivation.
//
// [api] - HTTP handlers exposing the pipeline (POST /v1/convert).
//
// [errors] - Structured error codes shared by all surfaces.
//
// [observability] - Hook interfaces for metrics and tracing backends.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/schematic/...  # Layout engine only
//
// [topology]: https://pkg.go.dev/github.com/matzehuels/railplan/pkg/topology
// [schematic]: https://pkg.go.dev/github.com/matzehuels/railplan/pkg/schematic
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/railplan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/railplan/pkg/cache
// [api]: https://pkg.go.dev/github.com/matzehuels/railplan/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/railplan/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/railplan/pkg/observability
package pkg
