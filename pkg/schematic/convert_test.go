package schematic

import (
	"math"
	"testing"

	"github.com/matzehuels/railplan/pkg/topology"
)

func TestLayout_StraightLine(t *testing.T) {
	g := mustGraph(t, lineFixture())
	layoutGrid(t, g)

	tests := []struct {
		uuid string
		x, y float64
	}{
		{"node-a", 0, 0},
		{"node-b", 2, 0},
		{"node-c", 4, 0},
	}
	for _, tt := range tests {
		n := nodeAt(t, g, tt.uuid)
		if n.NewX != tt.x || n.NewY != tt.y {
			t.Errorf("node %s = (%v, %v), want (%v, %v)", tt.uuid, n.NewX, n.NewY, tt.x, tt.y)
		}
	}
	for _, e := range g.Edges() {
		if e.Breakpoint() != nil {
			t.Errorf("straight line grew a breakpoint on %s", e.UUID())
		}
	}
}

func TestLayout_Fork(t *testing.T) {
	g := mustGraph(t, forkFixture())
	layoutGrid(t, g)

	tests := []struct {
		uuid string
		x, y float64
	}{
		{"node-a", 0, 0},
		{"node-b", 2, 0},
		{"node-c", 4, 0},
		{"node-d", 5, 1},
	}
	for _, tt := range tests {
		n := nodeAt(t, g, tt.uuid)
		if n.NewX != tt.x || n.NewY != tt.y {
			t.Errorf("node %s = (%v, %v), want (%v, %v)", tt.uuid, n.NewX, n.NewY, tt.x, tt.y)
		}
	}

	// The branch to d bends once: horizontal into the diagonal.
	bd := edgeAt(t, g, "edge-3-bd")
	bp := bd.Breakpoint()
	if bp == nil {
		t.Fatal("edge b-d has no breakpoint")
	}
	if bp.X != 3 || bp.Y != 1 {
		t.Errorf("breakpoint = (%v, %v), want (3, 1)", bp.X, bp.Y)
	}
	if bc := edgeAt(t, g, "edge-2-bc"); bc.Breakpoint() != nil {
		t.Error("straight branch b-c must not have a breakpoint")
	}

	assertGridInvariants(t, g)
}

func TestLayout_Merge(t *testing.T) {
	g := mustGraph(t, mergeFixture())
	layoutGrid(t, g)

	// The b—c edge had one column of overhang; shortening slides b right.
	tests := []struct {
		uuid string
		x, y float64
	}{
		{"node-a", 0, 0},
		{"node-b", 1, 1},
		{"node-c", 3, 1},
		{"node-d", 5, 1},
	}
	for _, tt := range tests {
		n := nodeAt(t, g, tt.uuid)
		if n.NewX != tt.x || n.NewY != tt.y {
			t.Errorf("node %s = (%v, %v), want (%v, %v)", tt.uuid, n.NewX, n.NewY, tt.x, tt.y)
		}
	}

	ac := edgeAt(t, g, "edge-1-ac")
	bp := ac.Breakpoint()
	if bp == nil {
		t.Fatal("edge a-c has no breakpoint")
	}
	if bp.X != 2 || bp.Y != 0 {
		t.Errorf("breakpoint = (%v, %v), want (2, 0)", bp.X, bp.Y)
	}

	assertGridInvariants(t, g)
}

func TestLayout_Station(t *testing.T) {
	g := mustGraph(t, stationFixture())
	layoutGrid(t, g)

	tests := []struct {
		uuid string
		x, y float64
	}{
		{"node-1-m1", 0, 0},
		{"node-2-m2", 2, 0},
		{"node-4-s1", 5, -1},
		{"node-3-m3", 8, 0},
		{"node-5-m4", 10, 0},
	}
	for _, tt := range tests {
		n := nodeAt(t, g, tt.uuid)
		if n.NewX != tt.x || n.NewY != tt.y {
			t.Errorf("node %s = (%v, %v), want (%v, %v)", tt.uuid, n.NewX, n.NewY, tt.x, tt.y)
		}
	}

	// The siding bends away from and back onto the main line.
	if bp := edgeAt(t, g, "edge-3-m2s1").Breakpoint(); bp == nil || bp.X != 3 || bp.Y != -1 {
		t.Errorf("m2-s1 breakpoint = %+v, want (3, -1)", bp)
	}
	if bp := edgeAt(t, g, "edge-4-s1m3").Breakpoint(); bp == nil || bp.X != 7 || bp.Y != -1 {
		t.Errorf("s1-m3 breakpoint = %+v, want (7, -1)", bp)
	}
	// The main line itself stays straight.
	if bp := edgeAt(t, g, "edge-2-m2m3").Breakpoint(); bp != nil {
		t.Errorf("main-to-main edge carries a breakpoint at (%v, %v)", bp.X, bp.Y)
	}

	assertGridInvariants(t, g)
	assertPointSides(t, g)
}

func TestLayout_PointSides(t *testing.T) {
	for name, top := range map[string]*topology.Topology{
		"fork":    forkFixture(),
		"merge":   mergeFixture(),
		"station": stationFixture(),
	} {
		g := mustGraph(t, top)
		layoutGrid(t, g)
		t.Run(name, func(t *testing.T) {
			assertPointSides(t, g)
		})
	}
}

func TestConvert_ScalesOutput(t *testing.T) {
	top := stationFixture()
	if _, err := Convert(top, Options{ScaleFactor: 1}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// Grid minima were (0, -1); x halves, y shifts up by one row.
	tests := []struct {
		uuid string
		x, y float64
	}{
		{"node-1-m1", 0, 1},
		{"node-2-m2", 1, 1},
		{"node-4-s1", 2.5, 0},
		{"node-3-m3", 4, 1},
		{"node-5-m4", 5, 1},
	}
	for _, tt := range tests {
		geo := top.Nodes[tt.uuid].Geo
		if !almostEqual(geo.X, tt.x) || !almostEqual(geo.Y, tt.y) {
			t.Errorf("node %s geo = (%v, %v), want (%v, %v)", tt.uuid, geo.X, geo.Y, tt.x, tt.y)
		}
	}

	// Breakpoints scale with the nodes.
	bps := top.Edges["edge-3-m2s1"].IntermediateGeoNodes
	if len(bps) != 1 {
		t.Fatalf("m2-s1 has %d intermediate geo nodes, want 1", len(bps))
	}
	if !almostEqual(bps[0].X, 1.5) || !almostEqual(bps[0].Y, 0) {
		t.Errorf("scaled breakpoint = (%v, %v), want (1.5, 0)", bps[0].X, bps[0].Y)
	}
}

func TestConvert_SignalDistances(t *testing.T) {
	top := stationFixture()
	if _, err := Convert(top, Options{ScaleFactor: 1}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// Pre-scale the m2—m3 signals land on slots 1/6 and 5/6 of a span of
	// six columns; scaling halves the horizontal length.
	if d := top.Signals["sig-1"].DistanceEdge; !almostEqual(d, 0.5) {
		t.Errorf("sig-1 distance = %v, want 0.5", d)
	}
	if d := top.Signals["sig-2"].DistanceEdge; !almostEqual(d, 2.5) {
		t.Errorf("sig-2 distance = %v, want 2.5", d)
	}
	// The siding signal sits on the bent edge's horizontal leg plus the
	// diagonal offset, halved by scaling.
	if d := top.Signals["sig-3"].DistanceEdge; !almostEqual(d, 1.0) {
		t.Errorf("sig-3 distance = %v, want 1.0", d)
	}
}

func TestConvert_EmptyTopology(t *testing.T) {
	top := topology.New()
	if _, err := Convert(top, Options{}); err != nil {
		t.Errorf("Convert(empty) error = %v", err)
	}
}

func TestConvert_DefaultScaleFactor(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.ScaleFactor != DefaultScaleFactor {
		t.Errorf("ScaleFactor = %v, want %v", opts.ScaleFactor, DefaultScaleFactor)
	}

	bad := Options{ScaleFactor: -2}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("negative scale factor should be rejected")
	}
}

// assertGridInvariants checks the structural layout laws on the integer
// grid: distinct positions, at most one breakpoint per edge, every bent
// edge splitting into one horizontal and one slope-1 leg, and the
// minimum span between non-main endpoints.
func assertGridInvariants(t *testing.T, g *Graph) {
	t.Helper()

	seen := make(map[[2]float64]string)
	for _, n := range g.Nodes() {
		key := [2]float64{n.NewX, n.NewY}
		if other, ok := seen[key]; ok {
			t.Errorf("nodes %s and %s share position (%v, %v)", other, n.UUID(), n.NewX, n.NewY)
		}
		seen[key] = n.UUID()
	}

	for _, e := range g.Edges() {
		src, dst := e.Source(), e.Target()
		bp := e.Breakpoint()

		if src.NewY == dst.NewY {
			if bp != nil {
				t.Errorf("edge %s is level but carries a breakpoint", e.UUID())
			}
		} else {
			bothMain := src.IsMainTrackNode() && dst.IsMainTrackNode()
			if bp == nil && !bothMain {
				t.Errorf("edge %s spans rows without a breakpoint", e.UUID())
				continue
			}
		}
		if bp != nil {
			legA := bp.Y == src.NewY && math.Abs(bp.Y-dst.NewY) == math.Abs(bp.X-dst.NewX)
			legB := bp.Y == dst.NewY && math.Abs(bp.Y-src.NewY) == math.Abs(bp.X-src.NewX)
			if !legA && !legB {
				t.Errorf("edge %s breakpoint (%v, %v) misaligned for (%v,%v)-(%v,%v)",
					e.UUID(), bp.X, bp.Y, src.NewX, src.NewY, dst.NewX, dst.NewY)
			}
		}

		if !src.IsMainTrackNode() || !dst.IsMainTrackNode() {
			required := math.Max(2, float64(e.MaxNumSignals())+1) + math.Abs(src.NewY-dst.NewY)
			if span := dst.NewX - src.NewX; span < required {
				t.Errorf("edge %s span %v below required %v", e.UUID(), span, required)
			}
		}
	}
}

// assertPointSides checks that every point node's head neighbor sits on
// the opposite x side of its two branch neighbors.
func assertPointSides(t *testing.T, g *Graph) {
	t.Helper()
	for _, n := range g.Nodes() {
		topNode := g.top.Nodes[n.UUID()]
		if !topNode.IsPoint() {
			continue
		}
		head := nodeAt(t, g, topNode.ConnectedOnHead)
		left := nodeAt(t, g, topNode.ConnectedOnLeft)
		right := nodeAt(t, g, topNode.ConnectedOnRight)

		if head.NewX == n.NewX || left.NewX == n.NewX || right.NewX == n.NewX {
			t.Errorf("point %s shares x with a neighbor", n.UUID())
		}
		if head.NewX < n.NewX && (left.NewX < n.NewX || right.NewX < n.NewX) {
			t.Errorf("point %s: branches not opposite the head", n.UUID())
		}
		if head.NewX > n.NewX && (left.NewX > n.NewX || right.NewX > n.NewX) {
			t.Errorf("point %s: branches not opposite the head", n.UUID())
		}
	}
}
