package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/railplan/pkg/cache"
	"github.com/matzehuels/railplan/pkg/errors"
	"github.com/matzehuels/railplan/pkg/observability"
	"github.com/matzehuels/railplan/pkg/schematic"
	"github.com/matzehuels/railplan/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options; each conversion itself is
// single-threaded.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → convert → emit pipeline with caching.
// data must be topology JSON as produced by pkg/topology.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Load
	top, err := topology.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load topology")
	}

	result := &Result{
		Stats: Stats{
			NodeCount:   len(top.Nodes),
			EdgeCount:   len(top.Edges),
			SignalCount: len(top.Signals),
		},
	}
	observability.Conversion().OnLoadComplete(ctx,
		result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.SignalCount)

	opts.Logger.Info("loaded topology",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"signals", result.Stats.SignalCount)

	// Hash the canonical serialization, not the raw input bytes, so
	// formatting differences do not defeat the cache.
	canonical, err := topology.Marshal(top)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	result.TopologyHash = cache.Hash(canonical)
	cacheKey := r.Keyer.ConversionKey(result.TopologyHash, opts.ConversionKeyOpts())

	// Stage 2: Convert (with cache)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cachedTop, err := topology.Unmarshal(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "conversion")
				opts.Logger.Debug("conversion cache hit", "key", cacheKey)
				result.Topology = cachedTop
				result.Data = cached
				result.CacheInfo.ConvertHit = true
				return result, nil
			}
			// Corrupt entry - recompute below.
		}
		observability.Cache().OnCacheMiss(ctx, "conversion")
	}

	convertStart := time.Now()
	observability.Conversion().OnConvertStart(ctx, result.Stats.NodeCount, result.Stats.EdgeCount)
	converted, err := schematic.Convert(top, opts.SchematicOptions())
	observability.Conversion().OnConvertComplete(ctx, time.Since(convertStart), err)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	result.Stats.ConvertTime = time.Since(convertStart)
	result.Topology = converted

	opts.Logger.Info("converted topology",
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.ConvertTime)

	// Stage 3: Emit
	out, err := topology.Marshal(converted)
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	result.Data = out

	if err := r.Cache.Set(ctx, cacheKey, out, cache.TTLConversion); err == nil {
		observability.Cache().OnCacheSet(ctx, "conversion", len(out))
	}

	return result, nil
}

// ExecuteFile is a convenience wrapper reading the topology from a file
// and writing the converted topology to another.
func (r *Runner) ExecuteFile(ctx context.Context, inPath, outPath string, opts Options) (*Result, error) {
	top, err := topology.ReadFile(inPath)
	if err != nil {
		return nil, err
	}
	data, err := topology.Marshal(top)
	if err != nil {
		return nil, err
	}
	result, err := r.Execute(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	if err := topology.WriteFile(result.Topology, outPath); err != nil {
		return nil, err
	}
	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
