package routing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
	"github.com/ardalan-sia/roadsim/pkg/routing"
)

func lengthOverMaxSpeed(e graphmodel.Road) float64 {
	return e.Length / float64(e.MaxSpeed)
}

// buildSquare builds the Scenario 1 graph: A(0,0) B(10,0) C(10,10) D(0,10)
// with bidirectional roads of length 10 and maxSpeed 10 all around.
func buildSquare(t *testing.T) (*graphmodel.Graph, int, int, int, int) {
	t.Helper()
	g := graphmodel.NewGraph()
	a := g.NewIntersection(0, 0)
	b := g.NewIntersection(10, 0)
	c := g.NewIntersection(10, 10)
	d := g.NewIntersection(0, 10)

	pairs := [][2]int{{a.ID, b.ID}, {b.ID, a.ID}, {b.ID, c.ID}, {c.ID, b.ID}, {c.ID, d.ID}, {d.ID, c.ID}, {d.ID, a.ID}, {a.ID, d.ID}}
	for _, p := range pairs {
		_, err := g.AddEdge(p[0], p[1], 10, 10)
		require.NoError(t, err)
	}
	return g, a.ID, b.ID, c.ID, d.ID
}

// Scenario 1 — Shortest path tie-break.
func TestDijkstraShortestPathCost(t *testing.T) {
	g, a, _, c, _ := buildSquare(t)
	strat := routing.NewDijkstra(lengthOverMaxSpeed)
	path := strat.ComputeRoute(a, c, g)
	require.Len(t, path, 3)
	require.Equal(t, a, path[0])
	require.Equal(t, c, path[len(path)-1])
	require.InDelta(t, 2.0, routing.PathCost(path, g, lengthOverMaxSpeed), 1e-9)
}

func TestDijkstraAStarEquivalentCost(t *testing.T) {
	g, a, _, c, _ := buildSquare(t)
	dPath := routing.NewDijkstra(lengthOverMaxSpeed).ComputeRoute(a, c, g)
	aPath := routing.NewAStar(lengthOverMaxSpeed).ComputeRoute(a, c, g)

	dCost := routing.PathCost(dPath, g, lengthOverMaxSpeed)
	aCost := routing.PathCost(aPath, g, lengthOverMaxSpeed)
	require.InDelta(t, dCost, aCost, 1e-9)
}

func TestComputeRouteStartEqualsGoal(t *testing.T) {
	g, a, _, _, _ := buildSquare(t)
	path := routing.NewDijkstra(lengthOverMaxSpeed).ComputeRoute(a, a, g)
	require.Equal(t, []int{a}, path)
}

func TestComputeRouteUnknownNodesReturnEmpty(t *testing.T) {
	g, a, _, _, _ := buildSquare(t)
	require.Empty(t, routing.NewDijkstra(lengthOverMaxSpeed).ComputeRoute(a, 999, g))
	require.Empty(t, routing.NewDijkstra(lengthOverMaxSpeed).ComputeRoute(999, a, g))
}

func TestComputeRouteUnreachableReturnsEmpty(t *testing.T) {
	g := graphmodel.NewGraph()
	a := g.NewIntersection(0, 0)
	b := g.NewIntersection(10, 0)
	// no edge between a and b.
	require.Empty(t, routing.NewDijkstra(lengthOverMaxSpeed).ComputeRoute(a.ID, b.ID, g))
}

func TestPathConsecutivePairsAreEdges(t *testing.T) {
	g, a, _, c, _ := buildSquare(t)
	path := routing.NewDijkstra(lengthOverMaxSpeed).ComputeRoute(a, c, g)
	for i := 0; i+1 < len(path); i++ {
		idx, ok := g.IndexOfID(path[i])
		require.True(t, ok)
		found := false
		for _, adj := range g.Outgoing(idx) {
			if g.NodeAt(adj.NeighborIndex).ID == path[i+1] {
				found = true
			}
		}
		require.True(t, found, "no edge %d->%d", path[i], path[i+1])
	}
}
