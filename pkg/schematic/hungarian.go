package schematic

import (
	"math"

	"github.com/matzehuels/railplan/pkg/errors"
)

// solveAssignment solves the rectangular minimum-cost assignment problem
// with the Hungarian algorithm (shortest augmenting path formulation,
// O(n²·m)). cost[i][j] is the cost of assigning row i to column j; the
// matrix must have at least as many columns as rows. The result maps each
// row index to its assigned column index.
func solveAssignment(cost [][]float64) ([]int, error) {
	n := len(cost)
	if n == 0 {
		return nil, nil
	}
	m := len(cost[0])
	if n > m {
		return nil, errors.New(errors.ErrCodeInternal, "",
			"assignment needs at least as many columns as rows (%d > %d)", n, m)
	}

	// Potentials and matching use 1-based indices; index 0 is the
	// virtual unmatched slot.
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	matchedRow := make([]int, m+1) // matchedRow[j] = row assigned to column j
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		matchedRow[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		used := make([]bool, m+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}

		for {
			used[j0] = true
			i0 := matchedRow[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				reduced := cost[i0-1][j-1] - u[i0] - v[j]
				if reduced < minv[j] {
					minv[j] = reduced
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[matchedRow[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if matchedRow[j0] == 0 {
				break
			}
		}

		// Augment along the alternating path back to the virtual slot.
		for j0 != 0 {
			j1 := way[j0]
			matchedRow[j0] = matchedRow[j1]
			j0 = j1
		}
	}

	assignment := make([]int, n)
	for j := 1; j <= m; j++ {
		if matchedRow[j] > 0 {
			assignment[matchedRow[j]-1] = j - 1
		}
	}
	return assignment, nil
}
