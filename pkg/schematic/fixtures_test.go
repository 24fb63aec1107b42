package schematic

import (
	"math"
	"testing"

	"github.com/matzehuels/railplan/pkg/topology"
)

// Test fixtures. Element IDs are chosen so the UUID-sorted construction
// order matches the comments; the layouts asserted against them were
// traced by hand on the integer grid.

// lineFixture is three nodes on one horizontal line:
//
//	a(0,0) — b(10,0) — c(20,0)
func lineFixture() *topology.Topology {
	top := topology.New()
	top.AddNode(&topology.Node{UUID: "node-a", Name: "a", Geo: &topology.GeoPoint{X: 0, Y: 0}})
	top.AddNode(&topology.Node{UUID: "node-b", Name: "b", Geo: &topology.GeoPoint{X: 10, Y: 0}})
	top.AddNode(&topology.Node{UUID: "node-c", Name: "c", Geo: &topology.GeoPoint{X: 20, Y: 0}})
	top.AddEdge(&topology.Edge{UUID: "edge-1-ab", NodeA: "node-a", NodeB: "node-b", Length: 10})
	top.AddEdge(&topology.Edge{UUID: "edge-2-bc", NodeA: "node-b", NodeB: "node-c", Length: 10})
	return top
}

// forkFixture is a switch fanning out into two branches:
//
//	a(0,0) — b(10,0) ⟨ c(20,10) above, d(20,-10) below
func forkFixture() *topology.Topology {
	top := topology.New()
	top.AddNode(&topology.Node{UUID: "node-a", Name: "a", Geo: &topology.GeoPoint{X: 0, Y: 0}})
	top.AddNode(&topology.Node{
		UUID: "node-b", Name: "b", Geo: &topology.GeoPoint{X: 10, Y: 0},
		ConnectedOnHead: "node-a", ConnectedOnLeft: "node-c", ConnectedOnRight: "node-d",
	})
	top.AddNode(&topology.Node{UUID: "node-c", Name: "c", Geo: &topology.GeoPoint{X: 20, Y: 10}})
	top.AddNode(&topology.Node{UUID: "node-d", Name: "d", Geo: &topology.GeoPoint{X: 20, Y: -10}})
	top.AddEdge(&topology.Edge{UUID: "edge-1-ab", NodeA: "node-a", NodeB: "node-b", Length: 10})
	top.AddEdge(&topology.Edge{UUID: "edge-2-bc", NodeA: "node-b", NodeB: "node-c", Length: 15})
	top.AddEdge(&topology.Edge{UUID: "edge-3-bd", NodeA: "node-b", NodeB: "node-d", Length: 15})
	return top
}

// mergeFixture is two start nodes joining at a switch:
//
//	a(0,10) ⟩ c(10,0) — d(20,0) ⟨ b(0,-10)
func mergeFixture() *topology.Topology {
	top := topology.New()
	top.AddNode(&topology.Node{UUID: "node-a", Name: "a", Geo: &topology.GeoPoint{X: 0, Y: 10}})
	top.AddNode(&topology.Node{UUID: "node-b", Name: "b", Geo: &topology.GeoPoint{X: 0, Y: -10}})
	top.AddNode(&topology.Node{
		UUID: "node-c", Name: "c", Geo: &topology.GeoPoint{X: 10, Y: 0},
		ConnectedOnHead: "node-d", ConnectedOnLeft: "node-a", ConnectedOnRight: "node-b",
	})
	top.AddNode(&topology.Node{UUID: "node-d", Name: "d", Geo: &topology.GeoPoint{X: 20, Y: 0}})
	top.AddEdge(&topology.Edge{UUID: "edge-1-ac", NodeA: "node-a", NodeB: "node-c", Length: 14})
	top.AddEdge(&topology.Edge{UUID: "edge-2-bc", NodeA: "node-b", NodeB: "node-c", Length: 14})
	top.AddEdge(&topology.Edge{UUID: "edge-3-cd", NodeA: "node-c", NodeB: "node-d", Length: 10})
	return top
}

// stationFixture is a main line with a passing siding and signals:
//
//	m1(0,0) — m2(10,0) ⟨ s1(20,10) ⟩ m3(30,0) — m4(40,0)
//
// m1..m4 lie on a main track; the m2—m3 edge carries two in-signals and
// the m2—s1 edge one.
func stationFixture() *topology.Topology {
	top := topology.New()
	top.AddNode(&topology.Node{UUID: "node-1-m1", Name: "m1", Geo: &topology.GeoPoint{X: 0, Y: 0}})
	top.AddNode(&topology.Node{
		UUID: "node-2-m2", Name: "m2", Geo: &topology.GeoPoint{X: 10, Y: 0},
		ConnectedOnHead: "node-1-m1", ConnectedOnLeft: "node-4-s1", ConnectedOnRight: "node-3-m3",
	})
	top.AddNode(&topology.Node{
		UUID: "node-3-m3", Name: "m3", Geo: &topology.GeoPoint{X: 30, Y: 0},
		ConnectedOnHead: "node-5-m4", ConnectedOnLeft: "node-4-s1", ConnectedOnRight: "node-2-m2",
	})
	top.AddNode(&topology.Node{UUID: "node-4-s1", Name: "s1", Geo: &topology.GeoPoint{X: 20, Y: 10}})
	top.AddNode(&topology.Node{UUID: "node-5-m4", Name: "m4", Geo: &topology.GeoPoint{X: 40, Y: 0}})

	top.AddEdge(&topology.Edge{UUID: "edge-1-m1m2", NodeA: "node-1-m1", NodeB: "node-2-m2", Length: 10})
	top.AddEdge(&topology.Edge{
		UUID: "edge-2-m2m3", NodeA: "node-2-m2", NodeB: "node-3-m3", Length: 20,
		Signals: []*topology.Signal{
			{UUID: "sig-1", Name: "60A1", Direction: topology.DirectionIn, System: topology.SignalSystemKs, DistanceEdge: 4},
			{UUID: "sig-2", Name: "60A2", Direction: topology.DirectionIn, System: topology.SignalSystemKs, DistanceEdge: 16},
		},
	})
	top.AddEdge(&topology.Edge{
		UUID: "edge-3-m2s1", NodeA: "node-2-m2", NodeB: "node-4-s1", Length: 20,
		Signals: []*topology.Signal{
			{UUID: "sig-3", Name: "60B1", Direction: topology.DirectionIn, System: topology.SignalSystemKs, DistanceEdge: 10},
		},
	})
	top.AddEdge(&topology.Edge{UUID: "edge-4-s1m3", NodeA: "node-4-s1", NodeB: "node-3-m3", Length: 20})
	top.AddEdge(&topology.Edge{UUID: "edge-5-m3m4", NodeA: "node-3-m3", NodeB: "node-5-m4", Length: 10})

	top.AddTrack(&topology.Track{
		UUID: "track-main", Name: "main", TrackType: topology.TrackTypeMain,
		Nodes: []string{"node-1-m1", "node-2-m2", "node-3-m3", "node-5-m4"},
		Edges: []string{"edge-1-m1m2", "edge-2-m2m3", "edge-5-m3m4"},
	})
	top.AddTrack(&topology.Track{
		UUID: "track-siding", Name: "siding", TrackType: topology.TrackTypeSiding,
		Nodes: []string{"node-4-s1"},
		Edges: []string{"edge-3-m2s1", "edge-4-s1m3"},
	})
	return top
}

// mustGraph builds the working graph or fails the test.
func mustGraph(t *testing.T, top *topology.Topology) *Graph {
	t.Helper()
	g, err := NewGraph(top, false)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	return g
}

// layoutGrid runs the positioning and post-processing passes without the
// final scaling, leaving the integer grid observable.
func layoutGrid(t *testing.T, g *Graph) {
	t.Helper()
	if err := g.generateVerticalPositions(); err != nil {
		t.Fatalf("generateVerticalPositions() error = %v", err)
	}
	if err := g.generateHorizontalPositions(); err != nil {
		t.Fatalf("generateHorizontalPositions() error = %v", err)
	}
	g.stretchMainTracks()
	if err := g.shortenNormalTracks(); err != nil {
		t.Fatalf("shortenNormalTracks() error = %v", err)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func nodeAt(t *testing.T, g *Graph, uuid string) *Node {
	t.Helper()
	n := g.Node(uuid)
	if n == nil {
		t.Fatalf("node %s not found", uuid)
	}
	return n
}

func edgeAt(t *testing.T, g *Graph, uuid string) *Edge {
	t.Helper()
	for _, e := range g.Edges() {
		if e.UUID() == uuid {
			return e
		}
	}
	t.Fatalf("edge %s not found", uuid)
	return nil
}
