package vehicle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ardalan-sia/roadsim/pkg/congestion"
	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
	"github.com/ardalan-sia/roadsim/pkg/routing"
	"github.com/ardalan-sia/roadsim/pkg/vehicle"
)

// buildLine builds a three-node straight line A(0,0) -> B(100,0) -> C(200,0)
// with maxSpeed 50 both edges, used by the free-flow, invariant and
// SetRoute tests.
func buildLine(t *testing.T) (*graphmodel.Graph, int, int, int) {
	t.Helper()
	g := graphmodel.NewGraph()
	a := g.NewIntersection(0, 0)
	b := g.NewIntersection(100, 0)
	c := g.NewIntersection(200, 0)
	_, err := g.AddEdge(a.ID, b.ID, 50, 10)
	require.NoError(t, err)
	_, err = g.AddEdge(b.ID, c.ID, 50, 10)
	require.NoError(t, err)
	return g, a.ID, b.ID, c.ID
}

// Scenario 3 — free flow, no leader: a Car should accelerate toward its
// desired speed and never exceed it.
func TestVehicleFreeFlowApproachesDesiredSpeed(t *testing.T) {
	g, a, b, c := buildLine(t)
	cm := congestion.New()
	v := vehicle.NewCar(1, g, cm, time.Duration(0))
	v.SetRoute([]int{a, b, c})

	// 3 s of driving: v0 is reached after about 1.5 s, and the Car is still
	// on its route (arrival, which sets the speed to 0, comes at about 4.7 s).
	for i := 0; i < 30; i++ {
		v.Update(0.1)
		require.LessOrEqual(t, v.Speed(), vehicle.CarIDM().V0+1e-6)
		require.GreaterOrEqual(t, v.Speed(), 0.0)
	}
	require.InDelta(t, vehicle.CarIDM().V0, v.Speed(), 1.0)
}

// Scenario 4 — anticipatory lookahead cap: approaching a slower edge, the
// Vehicle's speed should be capped below the fast edge's free-flow speed
// while it is still on the fast edge, before it reaches the boundary.
func TestVehicleLookaheadCapsSpeedBeforeSlowEdge(t *testing.T) {
	g := graphmodel.NewGraph()
	a := g.NewIntersection(0, 0)
	b := g.NewIntersection(500, 0)
	c := g.NewIntersection(510, 0)
	_, err := g.AddEdge(a.ID, b.ID, 50, 10)
	require.NoError(t, err)
	_, err = g.AddEdge(b.ID, c.ID, 5, 10)
	require.NoError(t, err)

	cm := congestion.New()
	v := vehicle.NewCar(2, g, cm, time.Duration(0))
	v.SetRoute([]int{a.ID, b.ID, c.ID})

	speedOnFastEdge := 0.0
	for i := 0; i < 2000 && v.HasEdge() && v.Edge().To == b.ID; i++ {
		speedOnFastEdge = v.Speed()
		v.Update(0.05)
	}
	require.Less(t, speedOnFastEdge, vehicle.CarIDM().V0)
}

// Scenario 5 — congestion-triggered reroute: entering a congested edge
// arms pendingReroute; once the cooldown elapses the Vehicle recomputes
// and applies a new route, invoking the reroute callback exactly once.
func TestVehicleRerouteOnCongestion(t *testing.T) {
	g := graphmodel.NewGraph()
	a := g.NewIntersection(0, 0)
	b := g.NewIntersection(10, 0)
	c := g.NewIntersection(10, 10)
	abRoad, err := g.AddEdge(a.ID, b.ID, 10, 1)
	require.NoError(t, err)
	_, err = g.AddEdge(a.ID, c.ID, 10, 10)
	require.NoError(t, err)
	_, err = g.AddEdge(c.ID, b.ID, 10, 10)
	require.NoError(t, err)

	cm := congestion.New()
	// saturate a->b so its effective speed drops well below free flow.
	for i := 0; i < 5; i++ {
		cm.OnEnterEdge(abRoad)
	}

	v := vehicle.NewCar(3, g, cm, 0)
	v.SetStrategy(routing.DijkstraKind)
	v.SetGoal(b.ID)
	v.SetRoute([]int{a.ID, b.ID})

	rerouted := false
	v.SetOnReroute(func(id int, oldETA, newETA float64) {
		rerouted = true
	})

	for i := 0; i < 20 && !rerouted; i++ {
		v.Update(0.5)
	}
	require.True(t, rerouted, "expected a reroute to be applied")
	require.Equal(t, []int{a.ID, c.ID, b.ID}, v.Route())
}

// Universal invariant: progress never exceeds the current edge length by
// more than the edge-end epsilon, and speed is never negative.
func TestVehicleInvariantsHoldAcrossTicks(t *testing.T) {
	g, a, b, c := buildLine(t)
	cm := congestion.New()
	v := vehicle.NewTruck(4, g, cm, time.Duration(0))
	v.SetRoute([]int{a, b, c})

	for i := 0; i < 500; i++ {
		v.Update(0.2)
		require.GreaterOrEqual(t, v.Speed(), 0.0)
		if v.HasEdge() {
			require.GreaterOrEqual(t, v.Progress(), 0.0)
			require.LessOrEqual(t, v.Progress(), 100.0+1e-6)
		}
	}
	require.True(t, v.HasArrived())
}

// SetRoute is idempotent: calling it twice with the same route from a
// fresh Vehicle produces the same initial state.
func TestVehicleSetRouteIdempotent(t *testing.T) {
	g, a, b, _ := buildLine(t)
	cm := congestion.New()
	v := vehicle.NewCar(5, g, cm, time.Duration(0))

	v.SetRoute([]int{a, b})
	firstEdge := v.Edge()
	firstProgress := v.Progress()

	v.SetRoute([]int{a, b})
	require.Equal(t, firstEdge, v.Edge())
	require.Equal(t, firstProgress, v.Progress())
}
