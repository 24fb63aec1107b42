package schematic

import (
	"math"

	"github.com/matzehuels/railplan/pkg/errors"
	"github.com/matzehuels/railplan/pkg/topology"
)

// Graph is the working graph the layout passes operate on. It is built
// once per conversion from a topology, mutated in place through all
// pipeline stages, and discarded after the result is written back.
//
// The graph owns its nodes and edges exclusively; the input topology is
// only touched through the wrapped element pointers. Iteration order over
// nodes and edges is fixed at construction (ascending UUID) so every
// pass is deterministic regardless of map internals.
//
// Graph is not safe for concurrent use; a conversion is strictly
// single-threaded.
type Graph struct {
	top *topology.Topology

	nodes []*Node // ascending UUID
	edges []*Edge // ascending UUID

	nodeByUUID map[string]*Node
	edgeByPair map[[2]string]*Edge // key: source/target UUIDs, ordered

	// Traversal state shared by the positioning passes. Reset between
	// stages via resetGenerationHelpers.
	visited          map[*Node]struct{}
	maxHorizontalIdx map[float64]float64  // row → rightmost occupied x (+Inf blocks the row)
	breakpoints      []*topology.GeoPoint // every breakpoint placed by the current pass
}

// NewGraph builds the working graph from a topology: normalizes original
// coordinates into [0,1], orders edge endpoints, partitions signals,
// classifies predecessors/successors, and computes height, depth, and
// reachability.
//
// When removeNonKsSignals is set, signals whose system is not Ks are
// stripped from the topology before the graph is built.
func NewGraph(top *topology.Topology, removeNonKsSignals bool) (*Graph, error) {
	g := &Graph{
		top:              top,
		nodeByUUID:       make(map[string]*Node, len(top.Nodes)),
		edgeByPair:       make(map[[2]string]*Edge, len(top.Edges)),
		visited:          make(map[*Node]struct{}),
		maxHorizontalIdx: make(map[float64]float64),
	}

	g.buildNodes()
	if removeNonKsSignals {
		g.stripNonKsSignals()
	}
	if err := g.buildEdges(); err != nil {
		return nil, err
	}
	if err := g.assignTracks(); err != nil {
		return nil, err
	}
	if err := g.computeNeighbors(); err != nil {
		return nil, err
	}
	g.computeHeights()
	g.computeDepths()
	g.computeReachability()

	return g, nil
}

// Nodes returns all working nodes in ascending UUID order.
// The returned slice is a read-only view.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns all working edges in ascending UUID order.
// The returned slice is a read-only view.
func (g *Graph) Edges() []*Edge { return g.edges }

// Node returns the working node wrapping the topology node with the
// given UUID, or nil.
func (g *Graph) Node(uuid string) *Node { return g.nodeByUUID[uuid] }

// EdgeBetween returns the edge connecting the two nodes, in either
// endpoint order.
func (g *Graph) EdgeBetween(a, b *Node) (*Edge, error) {
	if e, ok := g.edgeByPair[pairKey(a, b)]; ok {
		return e, nil
	}
	return nil, errors.New(errors.ErrCodeEdgeNotFound, a.UUID(),
		"no edge between %q and %q", a.Name(), b.Name())
}

// MaxNumSignals returns the per-side signal maximum of the edge between
// the two nodes.
func (g *Graph) MaxNumSignals(a, b *Node) (int, error) {
	e, err := g.EdgeBetween(a, b)
	if err != nil {
		return 0, err
	}
	return e.MaxNumSignals(), nil
}

// StartNodes returns all nodes without predecessors, in ascending UUID
// order.
func (g *Graph) StartNodes() []*Node {
	var starts []*Node
	for _, n := range g.nodes {
		if n.IsStartNode() {
			starts = append(starts, n)
		}
	}
	return starts
}

// minNodeDist returns the minimum horizontal span between two connected
// nodes: at least 2, and one more than the signal count the edge has to
// host.
func (g *Graph) minNodeDist(a, b *Node) (float64, error) {
	count, err := g.MaxNumSignals(a, b)
	if err != nil {
		return 0, err
	}
	return math.Max(2, float64(count)+1), nil
}

// setBreakpoint places the bend vertex of the edge between the two nodes
// and records it for the current pass.
func (g *Graph) setBreakpoint(x, y float64, a, b *Node) error {
	e, err := g.EdgeBetween(a, b)
	if err != nil {
		return err
	}
	p := &topology.GeoPoint{X: x, Y: y}
	e.setBreakpoint(p)
	g.breakpoints = append(g.breakpoints, p)
	return nil
}

// maxPlacedY returns the highest row occupied by a visited node or a
// placed breakpoint. ok is false while nothing is placed.
func (g *Graph) maxPlacedY() (float64, bool) {
	maxY, ok := math.Inf(-1), false
	for n := range g.visited {
		if n.NewY > maxY {
			maxY, ok = n.NewY, true
		}
	}
	for _, bp := range g.breakpoints {
		if bp.Y > maxY {
			maxY, ok = bp.Y, true
		}
	}
	return maxY, ok
}

// resetGenerationHelpers clears the visited set and the per-row caps so
// the next pass starts from a clean slate.
func (g *Graph) resetGenerationHelpers() {
	g.visited = make(map[*Node]struct{})
	g.maxHorizontalIdx = make(map[float64]float64)
}

// dropBreakpoints removes every breakpoint from every edge. The vertical
// pass places breakpoints only to coordinate rows; their x positions are
// authoritative only after the horizontal pass re-places them.
func (g *Graph) dropBreakpoints() {
	for _, e := range g.edges {
		e.clearBreakpoint()
	}
	g.breakpoints = nil
}

func pairKey(a, b *Node) [2]string {
	if a.UUID() < b.UUID() {
		return [2]string{a.UUID(), b.UUID()}
	}
	return [2]string{b.UUID(), a.UUID()}
}

// =============================================================================
// Construction
// =============================================================================

func (g *Graph) buildNodes() {
	for _, id := range g.top.NodeUUIDs() {
		n := newNode(g.top.Nodes[id])
		g.nodes = append(g.nodes, n)
		g.nodeByUUID[id] = n
	}
	if len(g.nodes) == 0 {
		return
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, n := range g.nodes {
		minX, maxX = math.Min(minX, n.originalX), math.Max(maxX, n.originalX)
		minY, maxY = math.Min(minY, n.originalY), math.Max(maxY, n.originalY)
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	// The y axis flips: input coordinates grow upwards, screen rows grow
	// downwards.
	for _, n := range g.nodes {
		n.originalX = (n.originalX - minX) / spanX
		n.originalY = 1 - (n.originalY-minY)/spanY
		n.NewX = n.originalX
		n.NewY = n.originalY
	}
}

func (g *Graph) stripNonKsSignals() {
	for _, id := range g.top.EdgeUUIDs() {
		e := g.top.Edges[id]
		kept := e.Signals[:0]
		for _, s := range e.Signals {
			if s.System == topology.SignalSystemKs {
				kept = append(kept, s)
			} else {
				delete(g.top.Signals, s.UUID)
			}
		}
		e.Signals = kept
	}
}

func (g *Graph) buildEdges() error {
	for _, id := range g.top.EdgeUUIDs() {
		topEdge := g.top.Edges[id]
		a, b := g.nodeByUUID[topEdge.NodeA], g.nodeByUUID[topEdge.NodeB]
		if a == nil || b == nil {
			return errors.New(errors.ErrCodeNotFound, id, "edge references unknown node")
		}
		e, err := newEdge(topEdge, a, b)
		if err != nil {
			return err
		}
		if err := a.addEdge(e); err != nil {
			return err
		}
		if err := b.addEdge(e); err != nil {
			return err
		}
		g.edges = append(g.edges, e)
		g.edgeByPair[pairKey(a, b)] = e
	}
	return nil
}

func (g *Graph) assignTracks() error {
	for _, id := range g.top.TrackUUIDs() {
		track := g.top.Tracks[id]
		for _, nodeUUID := range track.Nodes {
			n := g.nodeByUUID[nodeUUID]
			if n == nil {
				return errors.New(errors.ErrCodeNotFound, id,
					"track references unknown node %s", nodeUUID)
			}
			if err := n.addTrack(track); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) computeNeighbors() error {
	for _, n := range g.nodes {
		for _, e := range n.edges {
			neighbor := e.connectedNode(n)
			switch {
			case neighbor.originalLess(n):
				if err := n.addPredecessor(neighbor); err != nil {
					return err
				}
			case n.originalLess(neighbor):
				if err := n.addSuccessor(neighbor); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *Graph) computeHeights() {
	var compute func(n *Node) int
	compute = func(n *Node) int {
		if n.height >= 0 {
			return n.height
		}
		h := 0
		for _, s := range n.successors {
			h = max(h, 1+compute(s))
		}
		n.height = h
		return h
	}
	for _, n := range g.nodes {
		compute(n)
	}
}

// computeDepths assigns shortest-hop distances from the start set. A node
// only receives a depth once all its predecessors have one, which keeps
// depths well defined at merge vertices.
func (g *Graph) computeDepths() {
	var queue []*Node
	for _, n := range g.StartNodes() {
		n.depth = 0
		queue = append(queue, n)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range current.edges {
			neighbor := e.connectedNode(current)
			if neighbor.depth >= 0 {
				continue
			}
			ready := true
			for _, p := range neighbor.predecessors {
				if p.depth < 0 {
					ready = false
					break
				}
			}
			if ready {
				neighbor.depth = current.depth + 1
				queue = append(queue, neighbor)
			}
		}
	}
}

func (g *Graph) computeReachability() {
	memo := make(map[*Node]map[*Node]struct{}, len(g.nodes))

	var reachable func(n *Node) map[*Node]struct{}
	reachable = func(n *Node) map[*Node]struct{} {
		if r, ok := memo[n]; ok {
			return r
		}
		r := make(map[*Node]struct{})
		memo[n] = r
		for _, s := range n.successors {
			r[s] = struct{}{}
			for m := range reachable(s) {
				r[m] = struct{}{}
			}
		}
		return r
	}

	for _, n := range g.nodes {
		n.reachable = reachable(n)
	}
	for _, n := range g.nodes {
		for m := range n.reachable {
			m.reaching[n] = struct{}{}
		}
	}
}
