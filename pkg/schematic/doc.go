// Package schematic converts a geographically positioned railway
// topology into a schematic layout: every edge runs either perfectly
// horizontal or bends once into a 45° diagonal, main tracks form long
// horizontal spines, and signals sit on grid-aligned positions along
// their edges.
//
// # Pipeline
//
// [Convert] drives five stages over a working graph built from the input
// topology:
//
//  1. Construction: normalize coordinates into [0,1], order edge
//     endpoints left-to-right, partition signals by drawing side, and
//     compute per-node height, depth, and reachability.
//  2. Vertical positioning: a DFS from each start node, in an order
//     derived from a minimum cover over planarity-constrained
//     reachability, assigns integer rows and coordinates merges via
//     temporary breakpoints, shifting placed rows on collision.
//  3. Horizontal positioning: a second DFS assigns integer columns with
//     the rows fixed, enforcing the per-edge minimum span and placing
//     the final breakpoints.
//  4. Post-processing: main tracks stretch to the drawing bounds,
//     overhanging side branches shorten where safe, and signals are
//     redistributed by minimum-cost assignment.
//  5. Emission: scaled coordinates are written back onto the topology.
//
// # Determinism
//
// Identical inputs produce identical layouts: every iteration that feeds
// control flow runs over a derived total order (UUIDs, rows, or the
// depth/name tie-break), never over Go map order.
//
// # Limits
//
// A node carries at most two predecessors, two successors, and three
// edges; connected nodes must differ in original x; a fully diagonal
// edge holds at most one signal per side. Violations abort the
// conversion with a structured error from pkg/errors.
package schematic
