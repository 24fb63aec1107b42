package schematic

import (
	"github.com/matzehuels/railplan/pkg/errors"
	"github.com/matzehuels/railplan/pkg/topology"
)

// DefaultScaleFactor is the divisor applied in the final scaling pass
// when the caller does not choose one. X is divided by twice the factor,
// y by the factor itself.
const DefaultScaleFactor = 4.5

// Options configures a conversion.
type Options struct {
	// ScaleFactor divides the integer grid into output coordinates.
	// Typical values are 1–10; zero selects DefaultScaleFactor.
	ScaleFactor float64

	// RemoveNonKsSignals strips signals whose system is not Ks from the
	// topology before layout.
	RemoveNonKsSignals bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.ScaleFactor == 0 {
		o.ScaleFactor = DefaultScaleFactor
	}
	if o.ScaleFactor < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "", "scale factor must be positive, got %v", o.ScaleFactor)
	}
	return nil
}

// Convert lays the topology out schematically and returns it. The
// topology is mutated in place: node geo coordinates become scaled grid
// positions, every bent edge carries exactly one intermediate geo node,
// and signal distances are recomputed for the schematic edge lengths.
//
// The conversion is deterministic and strictly single-threaded. Any
// failure aborts the call and leaves the topology partially rewritten;
// callers that need the original should convert a copy.
func Convert(top *topology.Topology, opts Options) (*topology.Topology, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	g, err := NewGraph(top, opts.RemoveNonKsSignals)
	if err != nil {
		return nil, err
	}
	if len(g.nodes) == 0 {
		return top, nil
	}

	if err := g.generateVerticalPositions(); err != nil {
		return nil, err
	}
	if err := g.generateHorizontalPositions(); err != nil {
		return nil, err
	}

	g.stretchMainTracks()
	if err := g.shortenNormalTracks(); err != nil {
		return nil, err
	}
	if err := g.processSignals(); err != nil {
		return nil, err
	}
	g.scale(opts.ScaleFactor)
	g.emit()

	return top, nil
}
