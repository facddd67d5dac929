// Package routing implements shortest-time path planning over a
// graphmodel.Graph, parameterized by a pluggable edge-time function.
package routing

import (
	"math"

	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
)

// EdgeTimeFn maps a Road to a finite, non-negative travel time. Callers
// (Dijkstra, A*) treat a violation of that contract as fatal.
type EdgeTimeFn func(graphmodel.Road) float64

// Strategy is an abstract shortest-time planner. ComputeRoute returns an
// empty slice if start or goal is absent or unreachable; a single-element
// slice {startID} if start==goal; otherwise a sequence beginning at
// startID, ending at goalID, where every consecutive pair is a directed
// edge in g.
type Strategy interface {
	ComputeRoute(startID, goalID int, g *graphmodel.Graph) []int
}

// StrategyKind selects between the concrete Strategy implementations.
type StrategyKind int

const (
	DijkstraKind StrategyKind = iota
	AStarKind
)

func (k StrategyKind) String() string {
	switch k {
	case DijkstraKind:
		return "Dijkstra"
	case AStarKind:
		return "AStar"
	default:
		return "Unknown"
	}
}

// validateEdgeTime panics with ErrInvariantViolation if w is not a
// finite, non-negative number — an EdgeTimeFn contract violation is a
// programmer error, never a normal routing outcome.
func validateEdgeTime(w float64) {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		panic(ErrInvariantViolation)
	}
}

// PathCost sums timeFn over the consecutive edges of path, a sequence of
// node IDs as returned by Strategy.ComputeRoute. It returns 0 for a path
// of fewer than two nodes, and -1 if any consecutive pair is not a
// directed edge in g.
func PathCost(path []int, g *graphmodel.Graph, timeFn EdgeTimeFn) float64 {
	if len(path) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		fromIdx, ok := g.IndexOfID(path[i])
		if !ok {
			return -1
		}
		found := false
		for _, adj := range g.Outgoing(fromIdx) {
			if g.NodeAt(adj.NeighborIndex).ID == path[i+1] {
				w := timeFn(g.EdgeAt(adj.EdgeIndex))
				validateEdgeTime(w)
				total += w
				found = true
				break
			}
		}
		if !found {
			return -1
		}
	}
	return total
}

// reconstructPath walks parent from goalIdx back to startIdx and
// converts node indices back to IDs. It returns nil unless the
// reconstructed path actually starts at startIdx.
func reconstructPath(g *graphmodel.Graph, parent []int, startIdx, goalIdx int) []int {
	var idxPath []int
	cur := goalIdx
	for cur != -1 {
		idxPath = append(idxPath, cur)
		if cur == startIdx {
			break
		}
		cur = parent[cur]
	}
	for i, j := 0, len(idxPath)-1; i < j; i, j = i+1, j-1 {
		idxPath[i], idxPath[j] = idxPath[j], idxPath[i]
	}
	if len(idxPath) == 0 || idxPath[0] != startIdx {
		return nil
	}
	ids := make([]int, len(idxPath))
	for i, idx := range idxPath {
		ids[i] = g.NodeAt(idx).ID
	}
	return ids
}
