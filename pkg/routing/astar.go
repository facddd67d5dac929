package routing

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb/planar"

	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
)

// astarStrategy is A* with an admissible heuristic derived from a
// graph-wide optimistic speed bound: h(u) = euclidean(pos(u),pos(goal))
// / vmaxUpperBound, where vmaxUpperBound upper-bounds every edge's
// effective speed under timeFn.
type astarStrategy struct {
	timeFn EdgeTimeFn
}

// NewAStar returns an A* Strategy weighted by timeFn.
func NewAStar(timeFn EdgeTimeFn) Strategy {
	return &astarStrategy{timeFn: timeFn}
}

// vmaxUpperBound computes max(edge.Length/timeFn(edge)) over every edge
// in g. It is always strictly positive: edges with zero time are skipped,
// and when no edge yields a positive speed (e.g. a graph with no edges)
// it returns 1.
func vmaxUpperBound(g *graphmodel.Graph, timeFn EdgeTimeFn) float64 {
	best := 0.0
	for _, e := range g.Edges() {
		w := timeFn(e)
		validateEdgeTime(w)
		if w <= 0 {
			continue
		}
		if v := e.Length / w; v > best {
			best = v
		}
	}
	if best <= 0 {
		best = 1
	}
	return best
}

func (s *astarStrategy) ComputeRoute(startID, goalID int, g *graphmodel.Graph) []int {
	startIdx, ok := g.IndexOfID(startID)
	if !ok {
		return nil
	}
	goalIdx, ok := g.IndexOfID(goalID)
	if !ok {
		return nil
	}
	if startID == goalID {
		return []int{startID}
	}

	vmax := vmaxUpperBound(g, s.timeFn)
	goalPoint := g.NodeAt(goalIdx).Point()
	h := func(idx int) float64 {
		return planar.Distance(g.NodeAt(idx).Point(), goalPoint) / vmax
	}

	n := len(g.Nodes())
	gScore := make([]float64, n)
	parent := make([]int, n)
	closed := make([]bool, n)
	for i := 0; i < n; i++ {
		gScore[i] = math.Inf(1)
		parent[i] = -1
	}
	gScore[startIdx] = 0

	pq := &itemHeap{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &heapItem{index: startIdx, priority: h(startIdx), seq: seq})

	for pq.Len() > 0 {
		it := heap.Pop(pq).(*heapItem)
		u := it.index
		if closed[u] {
			continue
		}
		closed[u] = true
		if u == goalIdx {
			break
		}
		for _, adj := range g.Outgoing(u) {
			if closed[adj.NeighborIndex] {
				continue
			}
			w := s.timeFn(g.EdgeAt(adj.EdgeIndex))
			validateEdgeTime(w)
			tentative := gScore[u] + w
			if tentative < gScore[adj.NeighborIndex] {
				gScore[adj.NeighborIndex] = tentative
				parent[adj.NeighborIndex] = u
				seq++
				heap.Push(pq, &heapItem{
					index:    adj.NeighborIndex,
					priority: tentative + h(adj.NeighborIndex),
					seq:      seq,
				})
			}
		}
	}

	if !closed[goalIdx] {
		return nil
	}
	return reconstructPath(g, parent, startIdx, goalIdx)
}
