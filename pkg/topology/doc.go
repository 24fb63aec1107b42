// Package topology defines the rail network object model consumed and
// mutated by the schematic converter.
//
// A [Topology] maps UUIDs to nodes, edges, signals, and tracks. Node
// positions are real-world coordinates on input; after conversion they
// hold schematic grid coordinates, every bent edge carries exactly one
// intermediate geo node, and signal distances are re-expressed on the
// schematic edge.
//
// The package also provides deterministic JSON serialization (elements
// sorted by UUID) for files, caching, and the HTTP API.
package topology
