package schematic

import (
	"github.com/matzehuels/railplan/pkg/errors"
	"github.com/matzehuels/railplan/pkg/topology"
)

// Node is a vertex of the working graph, wrapping a topology node.
// Original coordinates are normalized into [0,1] during construction and
// immutable afterwards; NewX/NewY start equal to them and are rewritten
// by the layout passes.
type Node struct {
	top *topology.Node

	originalX float64
	originalY float64

	// Schematic grid position. Integer-valued through the layout passes,
	// fractional only after the final scaling step.
	NewX float64
	NewY float64

	height int // longest path to any reachable sink
	depth  int // shortest path from any start node

	tracks    []*topology.Track
	mainTrack *topology.Track

	edges        []*Edge // connected edges, at most 3
	predecessors []*Node // at most 2, insertion order
	successors   []*Node // at most 2, insertion order

	reachable map[*Node]struct{} // transitive successors
	reaching  map[*Node]struct{} // transitive predecessors
}

func newNode(top *topology.Node) *Node {
	return &Node{
		top:       top,
		originalX: top.Geo.X,
		originalY: top.Geo.Y,
		height:    -1,
		depth:     -1,
		reachable: make(map[*Node]struct{}),
		reaching:  make(map[*Node]struct{}),
	}
}

// UUID returns the identity of the underlying topology node.
func (n *Node) UUID() string { return n.top.UUID }

// Name returns the display name of the underlying topology node.
func (n *Node) Name() string { return n.top.Name }

// OriginalX returns the normalized input x coordinate.
func (n *Node) OriginalX() float64 { return n.originalX }

// OriginalY returns the normalized, screen-flipped input y coordinate.
func (n *Node) OriginalY() float64 { return n.originalY }

// Height returns the longest-hop distance to any end node.
func (n *Node) Height() int { return n.height }

// Depth returns the shortest-hop distance from any start node.
func (n *Node) Depth() int { return n.depth }

// Predecessors returns the nodes preceding n in the original-x ordering.
// The returned slice is a read-only view.
func (n *Node) Predecessors() []*Node { return n.predecessors }

// Successors returns the nodes following n in the original-x ordering.
// The returned slice is a read-only view.
func (n *Node) Successors() []*Node { return n.successors }

// Edges returns the edges incident to n. The returned slice is a
// read-only view.
func (n *Node) Edges() []*Edge { return n.edges }

// IsStartNode reports whether n has no predecessors.
func (n *Node) IsStartNode() bool { return len(n.predecessors) == 0 }

// IsEndNode reports whether n has no successors.
func (n *Node) IsEndNode() bool { return len(n.successors) == 0 }

// MainTrack returns the main track n belongs to, or nil.
func (n *Node) MainTrack() *topology.Track { return n.mainTrack }

// IsMainTrackNode reports whether n belongs to a main track.
func (n *Node) IsMainTrackNode() bool { return n.mainTrack != nil }

// addTrack records a track membership. A node may belong to at most one
// main track.
func (n *Node) addTrack(t *topology.Track) error {
	if t.IsMain() && n.mainTrack != nil && n.mainTrack != t {
		return errors.New(errors.ErrCodeMainTrackCollision, n.UUID(),
			"node %q belongs to main tracks %s and %s", n.Name(), n.mainTrack.UUID, t.UUID)
	}
	if t.IsMain() {
		n.mainTrack = t
	}
	n.tracks = append(n.tracks, t)
	return nil
}

// addEdge attaches a connected edge, enforcing the degree-3 bound.
func (n *Node) addEdge(e *Edge) error {
	if len(n.edges) >= 3 {
		return errors.New(errors.ErrCodeDegreeExceeded, n.UUID(),
			"node %q has more than 3 connected edges", n.Name())
	}
	n.edges = append(n.edges, e)
	return nil
}

func (n *Node) addPredecessor(p *Node) error {
	if len(n.predecessors) >= 2 {
		return errors.New(errors.ErrCodeDegreeExceeded, n.UUID(),
			"node %q has more than 2 predecessors", n.Name())
	}
	n.predecessors = append(n.predecessors, p)
	return nil
}

func (n *Node) addSuccessor(s *Node) error {
	if len(n.successors) >= 2 {
		return errors.New(errors.ErrCodeDegreeExceeded, n.UUID(),
			"node %q has more than 2 successors", n.Name())
	}
	n.successors = append(n.successors, s)
	return nil
}

// edgeTo returns the edge connecting n to other.
func (n *Node) edgeTo(other *Node) (*Edge, error) {
	for _, e := range n.edges {
		if e.source == other || e.target == other {
			return e, nil
		}
	}
	return nil, errors.New(errors.ErrCodeEdgeNotFound, n.UUID(),
		"nodes %q and %q are not directly connected", n.Name(), other.Name())
}

// slopeTo returns the slope of the segment from n to other in original
// coordinates. Construction rejects vertical edges, so the denominator
// is never zero for connected nodes.
func (n *Node) slopeTo(other *Node) float64 {
	return (other.originalY - n.originalY) / (other.originalX - n.originalX)
}

// originalLess orders nodes lexicographically by (original_x, original_y).
func (n *Node) originalLess(other *Node) bool {
	if n.originalX != other.originalX {
		return n.originalX < other.originalX
	}
	return n.originalY < other.originalY
}

// meanReachingY returns the mean original y over all nodes that reach n.
// Start nodes in the reaching set included; n itself is not. Falls back
// to n's own original y when nothing reaches it.
func (n *Node) meanReachingY() float64 {
	if len(n.reaching) == 0 {
		return n.originalY
	}
	var sum float64
	for m := range n.reaching {
		sum += m.originalY
	}
	return sum / float64(len(n.reaching))
}
