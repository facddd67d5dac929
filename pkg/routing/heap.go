package routing

// heapItem is one entry in the open-set min-heap, keyed by priority
// (tentative distance for Dijkstra, f-score for A*). seq records
// discovery order so that equal-priority ties break by first discovery,
// matching the teacher's lazy-decrease-key priority queue.
type heapItem struct {
	index    int
	priority float64
	seq      int
}

type itemHeap []*heapItem

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x interface{}) {
	*h = append(*h, x.(*heapItem))
}
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
