package schematic

import (
	"math"
	"slices"

	"github.com/matzehuels/railplan/pkg/errors"
	"github.com/matzehuels/railplan/pkg/topology"
)

// processSignals redistributes the signals of every edge onto grid-aligned
// relative positions. The two sides of an edge are placed independently:
// each side's signals are matched to candidate slots by least total
// displacement from their input positions, then written back in input
// order so the relative ordering along the edge survives.
func (g *Graph) processSignals() error {
	for _, e := range g.edges {
		if err := g.placeSignals(e, e.signalsAgainst); err != nil {
			return err
		}
		if err := g.placeSignals(e, e.signalsIn); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) placeSignals(e *Edge, signals []*topology.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	grid, err := candidatePositions(e)
	if err != nil {
		return err
	}
	if len(grid) < len(signals) {
		return errors.New(errors.ErrCodeInternal, e.UUID(),
			"edge offers %d signal slots for %d signals", len(grid), len(signals))
	}

	cost := make([][]float64, len(signals))
	for i, s := range signals {
		ratio := s.DistanceEdge / e.top.Length
		row := make([]float64, len(grid))
		for j, pos := range grid {
			row[j] = math.Abs(ratio - pos)
		}
		cost[i] = row
	}

	assignment, err := solveAssignment(cost)
	if err != nil {
		return err
	}

	chosen := make([]float64, len(signals))
	for i, col := range assignment {
		chosen[i] = grid[col]
	}
	slices.Sort(chosen)

	ordered := slices.Clone(signals)
	slices.SortStableFunc(ordered, func(a, b *topology.Signal) int {
		switch {
		case a.DistanceEdge < b.DistanceEdge:
			return -1
		case a.DistanceEdge > b.DistanceEdge:
			return 1
		case a.UUID < b.UUID:
			return -1
		}
		return 1
	})

	for i, s := range ordered {
		if err := e.setSignalPosition(s, chosen[i]); err != nil {
			return err
		}
	}
	return nil
}

// candidatePositions returns the grid of relative slots a signal can
// occupy on the edge. A straight portion of length L offers L−1 slots
// spaced 1/L apart; a fully diagonal edge offers a denser grid but holds
// at most one signal per side.
func candidatePositions(e *Edge) ([]float64, error) {
	if l := e.HorizontalOnlyLength(); l > 0 {
		eps := 1 / l
		return linspace(eps, 1-eps, int(math.Round(l))-1), nil
	}
	if e.MaxNumSignals() > 1 {
		return nil, errors.New(errors.ErrCodeDiagonalSignalOverflow, e.UUID(),
			"diagonal edge carries %d signals on one side, at most 1 supported", e.MaxNumSignals())
	}
	hl := e.HorizontalLength()
	eps := 1 / (hl + 1)
	return linspace(eps, 1-eps, int(math.Round(hl))+2), nil
}

// linspace returns num evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	if num == 1 {
		return []float64{start}
	}
	out := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
