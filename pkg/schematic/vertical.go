package schematic

import (
	"math"

	"github.com/matzehuels/railplan/pkg/topology"
)

// generateVerticalPositions runs the first positioning pass: a DFS from
// each start node (in the §4.2-derived order) that assigns integer row
// indices, inserts breakpoints at branch and merge vertices, and shifts
// already placed rows out of the way when a new branch collides.
//
// The horizontal indices computed here only coordinate rows; they are
// discarded together with every breakpoint once the pass finishes — the
// second pass recomputes both with the row assignment fixed.
func (g *Graph) generateVerticalPositions() error {
	order, err := g.startNodesInOrder()
	if err != nil {
		return err
	}
	for _, start := range order {
		vertical := 0.0
		if y, ok := g.maxPlacedY(); ok {
			vertical = y + 1
		}
		if err := g.placeVertical(start, 0, vertical); err != nil {
			return err
		}
	}

	g.resetGenerationHelpers()
	g.dropBreakpoints()
	return nil
}

func (g *Graph) placeVertical(n *Node, horizontal, vertical float64) error {
	// A merge node is placed by whichever branch arrives last. Until
	// then, block the current row so later branches cannot squat on it.
	for _, p := range n.predecessors {
		if !g.isVisited(p) {
			g.maxHorizontalIdx[vertical] = math.Inf(1)
			return nil
		}
	}

	if len(n.predecessors) == 2 {
		p0, p1 := n.predecessors[0], n.predecessors[1]
		if n.originalY <= p0.originalY && n.originalY <= p1.originalY {
			vertical = math.Min(p0.NewY, p1.NewY)
		}
		if n.originalY >= p0.originalY && n.originalY >= p1.originalY {
			vertical = math.Max(p0.NewY, p1.NewY)
		}
		for _, p := range n.predecessors {
			e, err := g.EdgeBetween(p, n)
			if err != nil {
				return err
			}
			if bp := e.Breakpoint(); bp != nil {
				vertical = bp.Y
			}
		}
	}

	horizontal, err := g.requiredHorizontalIdx(n, horizontal, vertical)
	if err != nil {
		return err
	}

	for _, p := range n.predecessors {
		bothMain := p.IsMainTrackNode() && n.IsMainTrackNode()
		if p.NewY == vertical || bothMain {
			continue
		}
		e, err := g.EdgeBetween(p, n)
		if err != nil {
			return err
		}
		if bp := e.Breakpoint(); bp == nil {
			x := horizontal - math.Abs(p.NewY-vertical)
			if err := g.setBreakpoint(x, p.NewY, p, n); err != nil {
				return err
			}
			g.maxHorizontalIdx[p.NewY] = x
		} else if bp.Y != vertical {
			// Realign the stale bend: pushing it right by the row delta
			// keeps its diagonal leg at slope 1.
			bp.X += math.Abs(vertical - bp.Y)
			bp.Y = vertical
		}
	}

	n.NewX = horizontal
	n.NewY = vertical
	g.visited[n] = struct{}{}

	switch len(n.successors) {
	case 1:
		next := n.successors[0]
		if g.isVisited(next) {
			return nil
		}
		dist, err := g.minNodeDist(n, next)
		if err != nil {
			return err
		}
		horizontal += dist
		bent, err := g.anyPredecessorEdgeBent(next)
		if err != nil {
			return err
		}
		if bent {
			vertical--
		}
		return g.placeVertical(next, horizontal, vertical)

	case 2:
		first, second, dy := generationDirection(n)

		if !g.isVisited(first) {
			dist, err := g.minNodeDist(n, first)
			if err != nil {
				return err
			}
			if n.IsMainTrackNode() && first.IsMainTrackNode() {
				// Main tracks fork purely diagonally, no breakpoint.
				hoff := dist - 1
				if err := g.placeVertical(first, horizontal+hoff, vertical+dy*hoff); err != nil {
					return err
				}
			} else {
				hoff := dist + 1
				if horizontal < g.maxHorizontalIdx[vertical+dy] {
					g.shiftPlacedRows(vertical + dy)
				}
				if err := g.setBreakpoint(horizontal+1, vertical+dy, n, first); err != nil {
					return err
				}
				if err := g.placeVertical(first, horizontal+hoff, vertical+dy); err != nil {
					return err
				}
			}
		}

		if !g.isVisited(second) {
			dist, err := g.minNodeDist(n, second)
			if err != nil {
				return err
			}
			return g.placeVertical(second, horizontal+dist, vertical)
		}
	}
	return nil
}

// requiredHorizontalIdx raises horizontal to the minimum index every
// predecessor admits: a main-to-main pair of different main tracks meets
// purely diagonally, everything else needs the signal span on top of the
// diagonal run.
func (g *Graph) requiredHorizontalIdx(n *Node, horizontal, vertical float64) (float64, error) {
	for _, p := range n.predecessors {
		var predDist float64
		if p.IsMainTrackNode() && n.IsMainTrackNode() && p.mainTrack != n.mainTrack {
			predDist = math.Abs(p.NewY - vertical)
		} else {
			dist, err := g.minNodeDist(p, n)
			if err != nil {
				return 0, err
			}
			predDist = math.Abs(p.NewY-vertical) + dist
		}
		horizontal = math.Max(horizontal, p.NewX+predDist)
	}
	return horizontal, nil
}

func (g *Graph) anyPredecessorEdgeBent(n *Node) (bool, error) {
	for _, p := range n.predecessors {
		e, err := g.EdgeBetween(p, n)
		if err != nil {
			return false, err
		}
		if e.Breakpoint() != nil {
			return true, nil
		}
	}
	return false, nil
}

func (g *Graph) isVisited(n *Node) bool {
	_, ok := g.visited[n]
	return ok
}

// generationDirection orders the two successors of a branch node into
// (first, second) and picks the row direction for the first. The
// "higher" successor is the one with the smaller slope. A successor
// sharing the node's main track always generates second, so the main
// track continues straight; otherwise the taller subtree goes second.
func generationDirection(n *Node) (first, second *Node, dy float64) {
	s0, s1 := n.successors[0], n.successors[1]
	higher, lower := s1, s0
	if n.slopeTo(s0) < n.slopeTo(s1) {
		higher, lower = s0, s1
	}

	first, second = lower, higher
	if n.IsMainTrackNode() {
		switch n.mainTrack {
		case higher.mainTrack:
			first, second = lower, higher
		case lower.mainTrack:
			first, second = higher, lower
		default:
			first, second = byHeight(higher, lower)
		}
	} else {
		first, second = byHeight(higher, lower)
	}

	dy = 1
	if first == higher {
		dy = -1
	}
	return first, second, dy
}

func byHeight(higher, lower *Node) (first, second *Node) {
	if higher.height >= lower.height {
		return lower, higher
	}
	return higher, lower
}

// shiftPlacedRows frees the row at threshold by moving every visited node
// at or above it (numerically ≤, rows grow downward) one row up, together
// with the breakpoints on their incident edges. Each breakpoint moves at
// most once even when both endpoints qualify.
func (g *Graph) shiftPlacedRows(threshold float64) {
	adjusted := make(map[*topology.GeoPoint]struct{})
	for _, n := range g.nodes {
		if !g.isVisited(n) || n.NewY > threshold {
			continue
		}
		n.NewY--
		for _, e := range n.edges {
			bp := e.Breakpoint()
			if bp == nil || bp.Y > threshold {
				continue
			}
			if _, ok := adjusted[bp]; ok {
				continue
			}
			adjusted[bp] = struct{}{}
			bp.Y--
		}
	}
}
