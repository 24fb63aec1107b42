package schematic

import (
	"slices"
)

// maxExhaustiveCoverNodes bounds the exhaustive subset enumeration for
// the minimum cover. Above this the greedy heuristic takes over; both
// honor the (depth, name, uuid) tie-break.
const maxExhaustiveCoverNodes = 20

// startNodesInOrder returns the start nodes in the order the vertical
// pass must walk them. The order is derived in three steps: compute each
// start node's forward reachability under the no-strict-intersection
// constraint, find a minimum set of nodes covering every start node's
// reachable set, then collect start nodes by walking each cover node's
// predecessor tree in descending slope order.
func (g *Graph) startNodesInOrder() ([]*Node, error) {
	starts := g.StartNodes()
	if len(starts) <= 1 {
		return starts, nil
	}

	reachable, err := g.planarReachability(starts)
	if err != nil {
		return nil, err
	}
	cover := g.minimumCover(starts, reachable)

	slices.SortFunc(cover, func(a, b *Node) int {
		ma, mb := a.meanReachingY(), b.meanReachingY()
		switch {
		case ma < mb:
			return -1
		case ma > mb:
			return 1
		case a.UUID() < b.UUID():
			return -1
		case a.UUID() > b.UUID():
			return 1
		}
		return 0
	})

	var order []*Node
	inOrder := make(map[*Node]struct{})
	for _, c := range cover {
		visited := make(map[*Node]struct{})
		if err := g.collectStartNodes(c, visited, inOrder, &order); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// planarReachability computes, per start node, the set of nodes a forward
// DFS reaches when edges that strictly intersect any other edge are
// impassable. A start node that cannot leave its position covers itself.
func (g *Graph) planarReachability(starts []*Node) (map[*Node]map[*Node]struct{}, error) {
	out := make(map[*Node]map[*Node]struct{}, len(starts))
	for _, start := range starts {
		reached := make(map[*Node]struct{})
		stack := []*Node{start}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, succ := range current.successors {
				if _, ok := reached[succ]; ok {
					continue
				}
				e, err := g.EdgeBetween(current, succ)
				if err != nil {
					return nil, err
				}
				if g.edgeIntersectsAny(e) {
					continue
				}
				reached[succ] = struct{}{}
				stack = append(stack, succ)
			}
		}
		if len(reached) == 0 {
			reached[start] = struct{}{}
		}
		out[start] = reached
	}
	return out, nil
}

func (g *Graph) edgeIntersectsAny(e *Edge) bool {
	for _, other := range g.edges {
		if e.intersectsStrictly(other) {
			return true
		}
	}
	return false
}

// minimumCover finds the smallest node set intersecting every start
// node's reachable set. Candidates are enumerated in (depth, name, uuid)
// order; small graphs get an exhaustive subset search by increasing size,
// larger ones a greedy set cover with the same tie-break.
func (g *Graph) minimumCover(starts []*Node, reachable map[*Node]map[*Node]struct{}) []*Node {
	candidateSet := make(map[*Node]struct{})
	for _, r := range reachable {
		for n := range r {
			candidateSet[n] = struct{}{}
		}
	}
	candidates := make([]*Node, 0, len(candidateSet))
	for _, n := range g.nodes {
		if _, ok := candidateSet[n]; ok {
			candidates = append(candidates, n)
		}
	}
	slices.SortFunc(candidates, compareByDepthName)

	if len(candidates) <= maxExhaustiveCoverNodes {
		if cover := exhaustiveCover(candidates, starts, reachable); cover != nil {
			return cover
		}
	}
	return greedyCover(candidates, starts, reachable)
}

func compareByDepthName(a, b *Node) int {
	if a.depth != b.depth {
		return a.depth - b.depth
	}
	if a.Name() != b.Name() {
		if a.Name() < b.Name() {
			return -1
		}
		return 1
	}
	if a.UUID() < b.UUID() {
		return -1
	}
	return 1
}

// exhaustiveCover enumerates candidate subsets by increasing size and
// returns the first that covers all start nodes, or nil if none does.
func exhaustiveCover(candidates []*Node, starts []*Node, reachable map[*Node]map[*Node]struct{}) []*Node {
	covers := func(combo []*Node) bool {
		for _, s := range starts {
			hit := false
			for _, c := range combo {
				if _, ok := reachable[s][c]; ok {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
		return true
	}

	for size := 1; size <= len(starts) && size <= len(candidates); size++ {
		if cover := firstCoveringCombination(candidates, size, covers); cover != nil {
			return cover
		}
	}
	return nil
}

// firstCoveringCombination walks k-combinations of candidates in
// lexicographic index order and returns the first satisfying combination.
func firstCoveringCombination(candidates []*Node, k int, satisfies func([]*Node) bool) []*Node {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	combo := make([]*Node, k)
	for {
		for i, j := range idx {
			combo[i] = candidates[j]
		}
		if satisfies(combo) {
			return slices.Clone(combo)
		}
		// Advance to the next combination.
		i := k - 1
		for i >= 0 && idx[i] == len(candidates)-k+i {
			i--
		}
		if i < 0 {
			return nil
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// greedyCover repeatedly picks the candidate covering the most still
// uncovered start nodes, breaking ties by (depth, name, uuid).
func greedyCover(candidates []*Node, starts []*Node, reachable map[*Node]map[*Node]struct{}) []*Node {
	uncovered := make(map[*Node]struct{}, len(starts))
	for _, s := range starts {
		uncovered[s] = struct{}{}
	}

	var cover []*Node
	for len(uncovered) > 0 {
		var best *Node
		bestCount := 0
		for _, c := range candidates {
			count := 0
			for s := range uncovered {
				if _, ok := reachable[s][c]; ok {
					count++
				}
			}
			if count > bestCount {
				best, bestCount = c, count
			}
		}
		if best == nil {
			break
		}
		cover = append(cover, best)
		for _, s := range starts {
			if _, ok := reachable[s][best]; ok {
				delete(uncovered, s)
			}
		}
	}
	return cover
}

// collectStartNodes walks backward from node along predecessor edges in
// descending slope order, skipping edges that strictly intersect others,
// and appends every newly seen start node to order.
func (g *Graph) collectStartNodes(node *Node, visited, inOrder map[*Node]struct{}, order *[]*Node) error {
	if _, ok := visited[node]; ok {
		return nil
	}
	visited[node] = struct{}{}

	if node.IsStartNode() {
		if _, ok := inOrder[node]; !ok {
			inOrder[node] = struct{}{}
			*order = append(*order, node)
		}
	}

	preds := slices.Clone(node.predecessors)
	slices.SortFunc(preds, func(a, b *Node) int {
		sa, sb := node.slopeTo(a), node.slopeTo(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		case a.UUID() < b.UUID():
			return -1
		}
		return 1
	})
	for _, pred := range preds {
		e, err := g.EdgeBetween(pred, node)
		if err != nil {
			return err
		}
		if g.edgeIntersectsAny(e) {
			continue
		}
		if err := g.collectStartNodes(pred, visited, inOrder, order); err != nil {
			return err
		}
	}
	return nil
}
