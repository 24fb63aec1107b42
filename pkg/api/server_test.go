package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/railplan/pkg/pipeline"
	"github.com/matzehuels/railplan/pkg/topology"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, nil)
	t.Cleanup(func() { runner.Close() })

	srv := httptest.NewServer(NewServer(runner, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func lineTopologyJSON(t *testing.T) []byte {
	t.Helper()
	top := topology.New()
	top.AddNode(&topology.Node{UUID: "node-a", Name: "a", Geo: &topology.GeoPoint{X: 0, Y: 0}})
	top.AddNode(&topology.Node{UUID: "node-b", Name: "b", Geo: &topology.GeoPoint{X: 10, Y: 0}})
	top.AddEdge(&topology.Edge{UUID: "edge-ab", NodeA: "node-a", NodeB: "node-b", Length: 10})

	data, err := topology.Marshal(top)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return data
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_Convert(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/convert?scale_factor=1", "application/json",
		bytes.NewReader(lineTopologyJSON(t)))
	if err != nil {
		t.Fatalf("POST /v1/convert error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Topology-Hash") == "" {
		t.Error("missing X-Topology-Hash header")
	}

	converted, err := topology.Read(resp.Body)
	if err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got := converted.Nodes["node-b"].Geo.X; got != 1 {
		t.Errorf("node-b x = %v, want 1", got)
	}
}

func TestServer_Convert_BadBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/convert", "application/json", bytes.NewReader([]byte("{")))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_Convert_BadQuery(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/convert?scale_factor=abc", "application/json",
		bytes.NewReader(lineTopologyJSON(t)))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_Convert_LayoutFailure(t *testing.T) {
	srv := newTestServer(t)

	// Two nodes sharing an x coordinate defeat the engine.
	top := topology.New()
	top.AddNode(&topology.Node{UUID: "node-a", Name: "a", Geo: &topology.GeoPoint{X: 0, Y: 0}})
	top.AddNode(&topology.Node{UUID: "node-b", Name: "b", Geo: &topology.GeoPoint{X: 0, Y: 10}})
	top.AddEdge(&topology.Edge{UUID: "edge-ab", NodeA: "node-a", NodeB: "node-b", Length: 10})
	data, err := topology.Marshal(top)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	resp, err := http.Post(srv.URL+"/v1/convert", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}

	var payload struct {
		Code    string `json:"code"`
		Element string `json:"element"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding error payload: %v", err)
	}
	if payload.Code != "VERTICAL_EDGE" {
		t.Errorf("code = %q, want VERTICAL_EDGE", payload.Code)
	}
	if payload.Element != "edge-ab" {
		t.Errorf("element = %q, want edge-ab", payload.Element)
	}
}
