package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Serialization - Deterministic JSON
// =============================================================================

// wireTopology is the on-disk shape: sorted slices instead of maps so the
// output is byte-stable for identical inputs (cache keys hash these bytes).
type wireTopology struct {
	Nodes  []*Node  `json:"nodes"`
	Edges  []*Edge  `json:"edges"`
	Tracks []*Track `json:"tracks,omitempty"`
}

// Marshal converts a topology to JSON bytes.
// Elements are sorted by UUID for deterministic output.
func Marshal(t *Topology) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a topology as JSON to an io.Writer.
func Write(t *Topology, w io.Writer) error {
	return writeTo(t, w)
}

// WriteFile writes a topology to a JSON file with 0644 permissions.
func WriteFile(t *Topology, path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(t, f)
}

// Unmarshal decodes JSON bytes into a topology.
func Unmarshal(data []byte) (*Topology, error) {
	return readFrom(bytes.NewReader(data))
}

// Read decodes a JSON topology from an io.Reader.
func Read(r io.Reader) (*Topology, error) {
	return readFrom(r)
}

// ReadFile reads a JSON file and returns the decoded topology.
func ReadFile(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(t *Topology, w io.Writer) error {
	out := wireTopology{
		Nodes:  make([]*Node, 0, len(t.Nodes)),
		Edges:  make([]*Edge, 0, len(t.Edges)),
		Tracks: make([]*Track, 0, len(t.Tracks)),
	}
	for _, id := range t.NodeUUIDs() {
		out.Nodes = append(out.Nodes, t.Nodes[id])
	}
	for _, id := range t.EdgeUUIDs() {
		out.Edges = append(out.Edges, t.Edges[id])
	}
	for _, id := range t.TrackUUIDs() {
		out.Tracks = append(out.Tracks, t.Tracks[id])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*Topology, error) {
	var in wireTopology
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	t := New()
	for _, n := range in.Nodes {
		if n.UUID == "" {
			return nil, fmt.Errorf("decode: node without uuid")
		}
		if n.Geo == nil {
			return nil, fmt.Errorf("decode: node %s without geo position", n.UUID)
		}
		t.Nodes[n.UUID] = n
	}
	for _, e := range in.Edges {
		if e.UUID == "" {
			return nil, fmt.Errorf("decode: edge without uuid")
		}
		if _, ok := t.Nodes[e.NodeA]; !ok {
			return nil, fmt.Errorf("decode: edge %s references unknown node %s", e.UUID, e.NodeA)
		}
		if _, ok := t.Nodes[e.NodeB]; !ok {
			return nil, fmt.Errorf("decode: edge %s references unknown node %s", e.UUID, e.NodeB)
		}
		t.Edges[e.UUID] = e
		for _, s := range e.Signals {
			t.Signals[s.UUID] = s
		}
	}
	for _, tr := range in.Tracks {
		if tr.UUID == "" {
			return nil, fmt.Errorf("decode: track without uuid")
		}
		t.Tracks[tr.UUID] = tr
	}
	return t, nil
}
