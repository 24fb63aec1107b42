package schematic

import (
	"math"
	"slices"
)

// generateHorizontalPositions runs the second positioning pass. Rows are
// final at this point, so the DFS only assigns x indices, enforcing the
// minimum spacing per predecessor and re-placing breakpoints with
// authoritative x positions.
func (g *Graph) generateHorizontalPositions() error {
	starts := g.StartNodes()
	slices.SortFunc(starts, func(a, b *Node) int {
		switch {
		case a.NewY < b.NewY:
			return -1
		case a.NewY > b.NewY:
			return 1
		case a.UUID() < b.UUID():
			return -1
		}
		return 1
	})

	for _, start := range starts {
		if err := g.placeHorizontal(start, 0); err != nil {
			return err
		}
	}

	g.resetGenerationHelpers()
	return nil
}

func (g *Graph) placeHorizontal(n *Node, horizontal float64) error {
	for _, p := range n.predecessors {
		if !g.isVisited(p) {
			return nil
		}
	}

	horizontal, err := g.requiredHorizontalIdx(n, horizontal, n.NewY)
	if err != nil {
		return err
	}

	for _, p := range n.predecessors {
		bothMain := p.IsMainTrackNode() && n.IsMainTrackNode()
		if p.NewY == n.NewY || bothMain {
			continue
		}
		e, err := g.EdgeBetween(p, n)
		if err != nil {
			return err
		}
		if e.Breakpoint() == nil {
			x := horizontal - math.Abs(p.NewY-n.NewY)
			if err := g.setBreakpoint(x, p.NewY, p, n); err != nil {
				return err
			}
		}
	}

	n.NewX = horizontal
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
		return g.placeHorizontal(next, horizontal+dist)

	case 2:
		first, second, _ := generationDirection(n)

		if !g.isVisited(first) {
			dist, err := g.minNodeDist(n, first)
			if err != nil {
				return err
			}
			if n.IsMainTrackNode() && first.IsMainTrackNode() {
				if err := g.placeHorizontal(first, horizontal+dist-1); err != nil {
					return err
				}
			} else {
				ydist := math.Abs(n.NewY - first.NewY)
				if err := g.setBreakpoint(horizontal+ydist, first.NewY, n, first); err != nil {
					return err
				}
				if err := g.placeHorizontal(first, horizontal+dist+ydist); err != nil {
					return err
				}
			}
		}

		if !g.isVisited(second) {
			dist, err := g.minNodeDist(n, second)
			if err != nil {
				return err
			}
			return g.placeHorizontal(second, horizontal+dist)
		}
	}
	return nil
}
