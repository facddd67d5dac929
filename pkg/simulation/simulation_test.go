package simulation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardalan-sia/roadsim/pkg/config"
	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
	"github.com/ardalan-sia/roadsim/pkg/routing"
	"github.com/ardalan-sia/roadsim/pkg/simulation"
)

// buildDiamond builds two parallel routes of equal free-flow time from A
// to B: A->X->B and A->Y->B.
func buildDiamond(t *testing.T) (*graphmodel.Graph, int, int, int, int) {
	t.Helper()
	g := graphmodel.NewGraph()
	a := g.NewIntersection(0, 0)
	x := g.NewIntersection(10, 10)
	y := g.NewIntersection(10, -10)
	b := g.NewIntersection(20, 0)

	_, err := g.AddEdge(a.ID, x.ID, 10, 1)
	require.NoError(t, err)
	_, err = g.AddEdge(x.ID, b.ID, 10, 1)
	require.NoError(t, err)
	_, err = g.AddEdge(a.ID, y.ID, 10, 10)
	require.NoError(t, err)
	_, err = g.AddEdge(y.ID, b.ID, 10, 10)
	require.NoError(t, err)
	return g, a.ID, x.ID, y.ID, b.ID
}

// Scenario 5 — ten vehicles spawned from A to B overload the capacity-1
// A->X->B route; a vehicle that enters an edge running below free-flow
// speed re-plans onto A->Y->B, so at least one reroute is recorded by the
// Simulation and the reported time saved is never negative.
func TestSimulationReroutesAwayFromCongestion(t *testing.T) {
	g, a, _, _, b := buildDiamond(t)
	cfg := config.DefaultConfig()
	cfg.RerouteCooldown = 0

	sim := simulation.New(g, cfg)
	sim.Start()

	for i := 0; i < 10; i++ {
		sim.SpawnVehicleCar(a, b, routing.DijkstraKind)
	}
	// drive the preloaded vehicles a few ticks before one more vehicle is
	// spawned.
	for i := 0; i < 5; i++ {
		sim.Update(0.1)
	}

	sim.SpawnVehicleCar(a, b, routing.DijkstraKind)

	rerouted := false
	for i := 0; i < 50 && !rerouted; i++ {
		sim.Update(0.5)
		if sim.RerouteCount() > 0 {
			rerouted = true
		}
	}
	require.True(t, rerouted, "expected at least one reroute to occur")
	require.GreaterOrEqual(t, sim.RerouteSavedTime(), 0.0)
}

// Congestion conservation: the number of vehicles reported on edges via
// Snapshot never exceeds the number of live vehicles.
func TestSimulationCongestionConservation(t *testing.T) {
	g, a, _, _, b := buildDiamond(t)
	cfg := config.DefaultConfig()
	sim := simulation.New(g, cfg)
	sim.Start()

	for i := 0; i < 5; i++ {
		sim.SpawnVehicleCar(a, b, routing.DijkstraKind)
	}

	for i := 0; i < 30; i++ {
		sim.Update(0.2)
		require.LessOrEqual(t, len(sim.Snapshot()), sim.Stats().Vehicles)
	}
}

// A single Car on an uncongested two-edge route arrives, is pruned from
// the Simulation, and is counted once in ArrivedTotal.
func TestSimulationArrivalAccumulatesArrivedTotal(t *testing.T) {
	g := graphmodel.NewGraph()
	a := g.NewIntersection(0, 0)
	b := g.NewIntersection(100, 0)
	c := g.NewIntersection(200, 0)
	_, err := g.AddEdge(a.ID, b.ID, 60, 10)
	require.NoError(t, err)
	_, err = g.AddEdge(b.ID, c.ID, 60, 10)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	sim := simulation.New(g, cfg)
	sim.Start()
	sim.SpawnVehicleCar(a.ID, c.ID, routing.DijkstraKind)

	for i := 0; i < 2000; i++ {
		sim.Update(0.05)
		if sim.Stats().Vehicles == 0 {
			break
		}
	}
	require.Equal(t, 0, sim.Stats().Vehicles)
	require.Equal(t, 1, sim.Stats().ArrivedTotal)
}

func TestSimulationUpdateNoOpWhenNotRunning(t *testing.T) {
	g, a, _, _, b := buildDiamond(t)
	cfg := config.DefaultConfig()
	sim := simulation.New(g, cfg)
	sim.SpawnVehicleCar(a, b, routing.DijkstraKind)

	before := sim.GetSimTime()
	sim.Update(1.0)
	require.Equal(t, before, sim.GetSimTime())

	sim.Start()
	sim.Pause()
	sim.Update(1.0)
	require.Equal(t, before, sim.GetSimTime())
}

func TestSimulationSetStrategyForAllAppliesToLiveVehicles(t *testing.T) {
	g, a, _, _, b := buildDiamond(t)
	cfg := config.DefaultConfig()
	sim := simulation.New(g, cfg)
	sim.Start()
	sim.SpawnVehicleCar(a, b, routing.DijkstraKind)
	sim.SetStrategyForAll(routing.AStarKind)
	sim.Update(0.1)
	require.Len(t, sim.Snapshot(), 1)
}
