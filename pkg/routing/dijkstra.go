package routing

import (
	"container/heap"
	"math"

	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
)

// dijkstraStrategy is standard label-setting Dijkstra with a min-heap
// open set, a closed flag to skip stale entries, and early termination
// on goal pop.
type dijkstraStrategy struct {
	timeFn EdgeTimeFn
}

// NewDijkstra returns a Dijkstra Strategy weighted by timeFn.
func NewDijkstra(timeFn EdgeTimeFn) Strategy {
	return &dijkstraStrategy{timeFn: timeFn}
}

func (s *dijkstraStrategy) ComputeRoute(startID, goalID int, g *graphmodel.Graph) []int {
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

	n := len(g.Nodes())
	dist := make([]float64, n)
	parent := make([]int, n)
	closed := make([]bool, n)
	for i := 0; i < n; i++ {
		dist[i] = math.Inf(1)
		parent[i] = -1
	}
	dist[startIdx] = 0

	pq := &itemHeap{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &heapItem{index: startIdx, priority: 0, seq: seq})

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
			alt := dist[u] + w
			if alt < dist[adj.NeighborIndex] {
				dist[adj.NeighborIndex] = alt
				parent[adj.NeighborIndex] = u
				seq++
				heap.Push(pq, &heapItem{index: adj.NeighborIndex, priority: alt, seq: seq})
			}
		}
	}

	if !closed[goalIdx] {
		return nil
	}
	return reconstructPath(g, parent, startIdx, goalIdx)
}
