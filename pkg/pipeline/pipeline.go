// Package pipeline provides the core conversion pipeline for railplan.
//
// This package implements the complete load → convert → emit pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a topology from JSON
//  2. Convert: Run the schematic layout engine over the topology
//  3. Emit: Encode the converted topology back to JSON
//
// Conversion results are cached by the hash of the input topology's
// canonical serialization plus the conversion options; converting is deterministic, so a cache
// hit is byte-identical to a fresh run.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{ScaleFactor: 4.5}
//	result, err := runner.Execute(ctx, topologyJSON, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	converted := result.Data
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/railplan/pkg/cache"
	"github.com/matzehuels/railplan/pkg/errors"
	"github.com/matzehuels/railplan/pkg/schematic"
	"github.com/matzehuels/railplan/pkg/topology"
)

// Options contains all configuration for the conversion pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// ScaleFactor divides the schematic grid into output coordinates.
	// Zero selects schematic.DefaultScaleFactor.
	ScaleFactor float64 `json:"scale_factor,omitempty"`

	// RemoveNonKsSignals strips signals of foreign signal systems before
	// layout.
	RemoveNonKsSignals bool `json:"remove_non_ks_signals,omitempty"`

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ScaleFactor == 0 {
		o.ScaleFactor = schematic.DefaultScaleFactor
	}
	if o.ScaleFactor < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "",
			"scale factor must be positive, got %v", o.ScaleFactor)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SchematicOptions projects the pipeline options onto the engine options.
func (o *Options) SchematicOptions() schematic.Options {
	return schematic.Options{
		ScaleFactor:        o.ScaleFactor,
		RemoveNonKsSignals: o.RemoveNonKsSignals,
	}
}

// ConversionKeyOpts returns the cache key options for this configuration.
func (o *Options) ConversionKeyOpts() cache.ConversionKeyOpts {
	return cache.ConversionKeyOpts{
		ScaleFactor:        o.ScaleFactor,
		RemoveNonKsSignals: o.RemoveNonKsSignals,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Topology is the converted topology.
	Topology *topology.Topology

	// Data is the converted topology as deterministic JSON.
	Data []byte

	// TopologyHash is the content hash of the input topology.
	TopologyHash string

	// Stats contains size and timing information.
	Stats Stats

	// CacheInfo tracks whether the conversion came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	SignalCount int
	ConvertTime time.Duration
}

// CacheInfo tracks cache hits for the pipeline run.
type CacheInfo struct {
	ConvertHit bool // Whether the conversion came from cache
}
