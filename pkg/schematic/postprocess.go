package schematic

import (
	"math"
)

// stretchMainTracks pulls main-track endpoints to the drawing bounds so
// the main tracks span the full width of the schematic.
func (g *Graph) stretchMainTracks() {
	if len(g.nodes) == 0 {
		return
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, n := range g.nodes {
		minX = math.Min(minX, n.NewX)
		maxX = math.Max(maxX, n.NewX)
	}
	for _, n := range g.nodes {
		if n.IsMainTrackNode() && n.IsStartNode() {
			n.NewX = minX
		}
		if n.IsMainTrackNode() && n.IsEndNode() {
			n.NewX = maxX
		}
	}
}

// shortenNormalTracks removes overhang from side branches: when an edge
// is longer than its required span and cutting it would detach a
// component free of main-track nodes, that component slides right to
// close the gap. Breakpoints on the component's outgoing edges move
// along, except the cut edge's own breakpoint when it sits on the moved
// node's row.
func (g *Graph) shortenNormalTracks() error {
	for _, e := range g.edges {
		dist, err := g.minNodeDist(e.source, e.target)
		if err != nil {
			return err
		}
		required := dist + math.Abs(e.source.NewY-e.target.NewY)
		overhang := (e.target.NewX - e.source.NewX) - required
		if overhang <= 0 {
			continue
		}

		component := connectedComponentWithout(e.source, e)
		if _, attached := component[e.target]; attached {
			continue
		}
		touchesMain := false
		for n := range component {
			if n.IsMainTrackNode() {
				touchesMain = true
				break
			}
		}
		if touchesMain {
			continue
		}

		for _, n := range g.nodes {
			if _, ok := component[n]; !ok {
				continue
			}
			n.NewX += overhang
			for _, se := range n.edges {
				if se.source != n {
					continue
				}
				bp := se.Breakpoint()
				if bp == nil {
					continue
				}
				if se == e && bp.Y == n.NewY {
					continue
				}
				bp.X += overhang
			}
		}
	}
	return nil
}

// connectedComponentWithout returns every node reachable from start when
// excluded is impassable, ignoring edge direction.
func connectedComponentWithout(start *Node, excluded *Edge) map[*Node]struct{} {
	component := make(map[*Node]struct{})
	stack := []*Node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := component[n]; ok {
			continue
		}
		component[n] = struct{}{}
		for _, e := range n.edges {
			if e == excluded {
				continue
			}
			neighbor := e.connectedNode(n)
			if _, ok := component[neighbor]; !ok {
				stack = append(stack, neighbor)
			}
		}
	}
	return component
}

// scale maps the integer grid onto the requested output range: after
// shifting the minima to zero, x is divided by twice the scale factor and
// y by the scale factor itself. Signal distances rescale with their edge's
// horizontal length.
func (g *Graph) scale(scaleFactor float64) {
	if len(g.nodes) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range g.nodes {
		minX = math.Min(minX, n.NewX)
		minY = math.Min(minY, n.NewY)
	}

	oldLengths := make(map[*Edge]float64, len(g.edges))
	for _, e := range g.edges {
		oldLengths[e] = e.HorizontalLength()
	}

	for _, n := range g.nodes {
		n.NewX = (n.NewX - minX) / (2 * scaleFactor)
		n.NewY = (n.NewY - minY) / scaleFactor
	}
	for _, e := range g.edges {
		for _, p := range e.top.IntermediateGeoNodes {
			p.X = (p.X - minX) / (2 * scaleFactor)
			p.Y = (p.Y - minY) / scaleFactor
		}
	}

	for _, e := range g.edges {
		old := oldLengths[e]
		if old == 0 {
			continue
		}
		ratio := e.HorizontalLength() / old
		for _, s := range e.top.Signals {
			s.DistanceEdge *= ratio
		}
	}
}

// emit writes the schematic coordinates back onto the topology nodes.
// Breakpoints already live in the edges' intermediate geo node lists.
func (g *Graph) emit() {
	for _, n := range g.nodes {
		n.top.Geo.X = n.NewX
		n.top.Geo.Y = n.NewY
	}
}
