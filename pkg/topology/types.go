package topology

import (
	"slices"

	"github.com/google/uuid"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Signal directions. A signal either points along the edge (from node A
// towards node B) or against it.
const (
	DirectionIn      = "in"
	DirectionAgainst = "against"
)

// SignalSystemKs is the Ks signal system tag. Converters can be configured
// to drop every signal belonging to a different system before layout.
const SignalSystemKs = "Ks"

// Track types. TrackTypeMain marks a continuous main track; main tracks
// are drawn as long horizontal spines in the schematic output.
const (
	TrackTypeMain    = "main"
	TrackTypeSiding  = "siding"
	TrackTypeConnect = "connecting"
	TrackTypeOther   = "other"
)

// =============================================================================
// GeoPoint - Mutable Coordinate
// =============================================================================

// GeoPoint is a mutable euclidean coordinate. Node positions and edge
// breakpoints share this type so layout passes can move both uniformly.
type GeoPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// =============================================================================
// Topology Elements
// =============================================================================

// Node is a topology vertex: a rail switch (point) or a track end.
// Geo is overwritten in place when a converter lays the topology out.
type Node struct {
	UUID string    `json:"uuid"`
	Name string    `json:"name,omitempty"`
	Geo  *GeoPoint `json:"geo"`

	// Point wiring. A point (switch) has exactly three connections: the
	// head faces the two branches. Empty on track ends.
	ConnectedOnHead  string `json:"connected_on_head,omitempty"`
	ConnectedOnLeft  string `json:"connected_on_left,omitempty"`
	ConnectedOnRight string `json:"connected_on_right,omitempty"`
}

// IsPoint reports whether the node is a switch (all three connections set).
func (n *Node) IsPoint() bool {
	return n.ConnectedOnHead != "" && n.ConnectedOnLeft != "" && n.ConnectedOnRight != ""
}

// Edge connects two nodes. IntermediateGeoNodes holds the bend points of
// the drawn polyline; after schematic conversion it contains at most one
// entry (the breakpoint between the horizontal and the diagonal leg).
type Edge struct {
	UUID                 string      `json:"uuid"`
	NodeA                string      `json:"node_a"`
	NodeB                string      `json:"node_b"`
	Length               float64     `json:"length"`
	IntermediateGeoNodes []*GeoPoint `json:"intermediate_geo_nodes,omitempty"`
	Signals              []*Signal   `json:"signals,omitempty"`
}

// Signal sits on an edge at DistanceEdge from node A. Direction is
// relative to the edge's A→B orientation.
type Signal struct {
	UUID         string  `json:"uuid"`
	Name         string  `json:"name,omitempty"`
	Direction    string  `json:"direction"`
	System       string  `json:"system,omitempty"`
	Kind         string  `json:"kind,omitempty"`
	DistanceEdge float64 `json:"distance_edge"`
}

// Track groups nodes and edges into an operational unit. Only TrackType
// matters to the schematic converter: main tracks stay horizontal.
type Track struct {
	UUID      string   `json:"uuid"`
	Name      string   `json:"name,omitempty"`
	TrackType string   `json:"track_type"`
	Nodes     []string `json:"nodes,omitempty"`
	Edges     []string `json:"edges,omitempty"`
}

// IsMain reports whether the track is a continuous main track.
func (t *Track) IsMain() bool { return t.TrackType == TrackTypeMain }

// =============================================================================
// Topology
// =============================================================================

// Topology is the in-memory rail network model. All maps are keyed by
// element UUID. The schematic converter mutates a Topology in place:
// node geo coordinates, edge intermediate geo nodes, and signal distances
// are overwritten with schematic values.
type Topology struct {
	Nodes   map[string]*Node   `json:"nodes"`
	Edges   map[string]*Edge   `json:"edges"`
	Signals map[string]*Signal `json:"signals,omitempty"`
	Tracks  map[string]*Track  `json:"tracks,omitempty"`
}

// New creates an empty topology with initialized maps.
func New() *Topology {
	return &Topology{
		Nodes:   make(map[string]*Node),
		Edges:   make(map[string]*Edge),
		Signals: make(map[string]*Signal),
		Tracks:  make(map[string]*Track),
	}
}

// AddNode inserts a node, assigning a fresh UUID if none is set.
func (t *Topology) AddNode(n *Node) *Node {
	if n.UUID == "" {
		n.UUID = uuid.NewString()
	}
	t.Nodes[n.UUID] = n
	return n
}

// AddEdge inserts an edge, assigning a fresh UUID if none is set.
// Signals carried by the edge are indexed in the global signal map.
func (t *Topology) AddEdge(e *Edge) *Edge {
	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	t.Edges[e.UUID] = e
	for _, s := range e.Signals {
		if s.UUID == "" {
			s.UUID = uuid.NewString()
		}
		t.Signals[s.UUID] = s
	}
	return e
}

// AddTrack inserts a track, assigning a fresh UUID if none is set.
func (t *Topology) AddTrack(tr *Track) *Track {
	if tr.UUID == "" {
		tr.UUID = uuid.NewString()
	}
	t.Tracks[tr.UUID] = tr
	return tr
}

// RemoveSignal detaches a signal from its edge and the global index.
// Unknown UUIDs are ignored.
func (t *Topology) RemoveSignal(signalUUID string) {
	delete(t.Signals, signalUUID)
	for _, e := range t.Edges {
		e.Signals = slices.DeleteFunc(e.Signals, func(s *Signal) bool {
			return s.UUID == signalUUID
		})
	}
}

// NodeUUIDs returns all node UUIDs in sorted order.
// Use this at iteration sites that must be deterministic.
func (t *Topology) NodeUUIDs() []string {
	return sortedKeys(t.Nodes)
}

// EdgeUUIDs returns all edge UUIDs in sorted order.
func (t *Topology) EdgeUUIDs() []string {
	return sortedKeys(t.Edges)
}

// TrackUUIDs returns all track UUIDs in sorted order.
func (t *Topology) TrackUUIDs() []string {
	return sortedKeys(t.Tracks)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
