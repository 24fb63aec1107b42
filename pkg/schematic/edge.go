package schematic

import (
	"math"
	"slices"

	"github.com/matzehuels/railplan/pkg/errors"
	"github.com/matzehuels/railplan/pkg/topology"
)

// Edge is a connection in the working graph, wrapping a topology edge.
// Source and target are ordered by lexicographic (original_x, original_y),
// so the source is always the left endpoint regardless of the underlying
// node_a/node_b orientation.
type Edge struct {
	top *topology.Edge

	source *Node
	target *Node

	// Signals split by drawing side. A signal is "in" when it points in
	// the source→target direction, "against" otherwise. Sorted by UUID.
	signalsIn      []*topology.Signal
	signalsAgainst []*topology.Signal
}

func newEdge(top *topology.Edge, a, b *Node) (*Edge, error) {
	if a.originalX == b.originalX {
		return nil, errors.New(errors.ErrCodeVerticalEdge, top.UUID,
			"nodes %q and %q share original x position", a.Name(), b.Name())
	}
	e := &Edge{top: top}
	if a.originalLess(b) {
		e.source, e.target = a, b
	} else {
		e.source, e.target = b, a
	}

	sourceIsA := e.source.UUID() == top.NodeA
	for _, s := range top.Signals {
		if (s.Direction == topology.DirectionIn && sourceIsA) ||
			(s.Direction == topology.DirectionAgainst && !sourceIsA) {
			e.signalsIn = append(e.signalsIn, s)
		} else {
			e.signalsAgainst = append(e.signalsAgainst, s)
		}
	}
	sortSignals(e.signalsIn)
	sortSignals(e.signalsAgainst)

	// Any pre-existing polyline geometry is stale once layout starts.
	top.IntermediateGeoNodes = nil

	return e, nil
}

func sortSignals(signals []*topology.Signal) {
	slices.SortFunc(signals, func(a, b *topology.Signal) int {
		if a.UUID < b.UUID {
			return -1
		}
		if a.UUID > b.UUID {
			return 1
		}
		return 0
	})
}

// UUID returns the identity of the underlying topology edge.
func (e *Edge) UUID() string { return e.top.UUID }

// Source returns the left endpoint.
func (e *Edge) Source() *Node { return e.source }

// Target returns the right endpoint.
func (e *Edge) Target() *Node { return e.target }

// SignalsIn returns the signals drawn on the in side.
func (e *Edge) SignalsIn() []*topology.Signal { return e.signalsIn }

// SignalsAgainst returns the signals drawn on the against side.
func (e *Edge) SignalsAgainst() []*topology.Signal { return e.signalsAgainst }

// MaxNumSignals returns the larger of the two per-side signal counts.
// It determines the minimum horizontal span the edge needs.
func (e *Edge) MaxNumSignals() int {
	return max(len(e.signalsIn), len(e.signalsAgainst))
}

// Breakpoint returns the edge's bend vertex, or nil for a straight edge.
func (e *Edge) Breakpoint() *topology.GeoPoint {
	if len(e.top.IntermediateGeoNodes) == 0 {
		return nil
	}
	return e.top.IntermediateGeoNodes[0]
}

// setBreakpoint replaces the edge's bend vertex.
func (e *Edge) setBreakpoint(p *topology.GeoPoint) {
	e.top.IntermediateGeoNodes = []*topology.GeoPoint{p}
}

// clearBreakpoint removes the edge's bend vertex.
func (e *Edge) clearBreakpoint() {
	e.top.IntermediateGeoNodes = nil
}

// HorizontalLength returns the x span of the edge in layout units.
func (e *Edge) HorizontalLength() float64 {
	return math.Abs(e.target.NewX - e.source.NewX)
}

// HorizontalOnlyLength returns the length of the edge's straight portion:
// the diagonal portion always has slope ±1, so it consumes exactly |Δy|
// of the x span.
func (e *Edge) HorizontalOnlyLength() float64 {
	return math.Abs(e.source.NewX-e.target.NewX) - math.Abs(e.source.NewY-e.target.NewY)
}

// connectedNode returns the opposite endpoint.
func (e *Edge) connectedNode(n *Node) *Node {
	if n == e.source {
		return e.target
	}
	return e.source
}

// intersectsStrictly reports whether e and other cross in their interiors
// using original coordinates. Collinear overlaps and shared endpoints do
// not count.
func (e *Edge) intersectsStrictly(other *Edge) bool {
	if e == other {
		return false
	}

	direction := func(ax, ay, bx, by, cx, cy float64) float64 {
		return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
	}

	d1 := direction(e.source.originalX, e.source.originalY, e.target.originalX, e.target.originalY, other.source.originalX, other.source.originalY)
	d2 := direction(e.source.originalX, e.source.originalY, e.target.originalX, e.target.originalY, other.target.originalX, other.target.originalY)
	d3 := direction(other.source.originalX, other.source.originalY, other.target.originalX, other.target.originalY, e.source.originalX, e.source.originalY)
	d4 := direction(other.source.originalX, other.source.originalY, other.target.originalX, other.target.originalY, e.target.originalX, e.target.originalY)

	return d1*d2 < 0 && d3*d4 < 0
}

// setSignalPosition rewrites a signal's edge distance from a relative
// position in [0,1] along the leg that carries it. For a bent edge the
// relative position addresses the horizontal leg; signals anchored from
// the far end additionally take the diagonal span as an offset.
func (e *Edge) setSignalPosition(signal *topology.Signal, relative float64) error {
	if !slices.Contains(e.top.Signals, signal) {
		return errors.New(errors.ErrCodeSignalNotOnEdge, signal.UUID,
			"signal %q not found on edge %s", signal.Name, e.UUID())
	}
	if relative < 0 || relative > 1 {
		return errors.New(errors.ErrCodeBadRelativePosition, signal.UUID,
			"relative position %v outside [0, 1]", relative)
	}

	bp := e.Breakpoint()
	if bp == nil {
		signal.DistanceEdge = relative * math.Abs(e.source.NewX-e.target.NewX)
		return nil
	}

	diagonalSpan := e.HorizontalLength() - e.HorizontalOnlyLength()
	switch {
	case bp.Y == e.source.NewY:
		signal.DistanceEdge = relative * math.Abs(e.source.NewX-bp.X)
		if e.top.NodeA == e.target.UUID() {
			signal.DistanceEdge += diagonalSpan
		}
	case bp.Y == e.target.NewY:
		signal.DistanceEdge = relative * math.Abs(e.target.NewX-bp.X)
		if e.top.NodeA == e.source.UUID() {
			signal.DistanceEdge += diagonalSpan
		}
	default:
		return errors.New(errors.ErrCodeMalformedBreakpoint, e.UUID(),
			"breakpoint y=%v matches neither endpoint (%v, %v)", bp.Y, e.source.NewY, e.target.NewY)
	}
	return nil
}
