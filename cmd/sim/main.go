package main

import (
	"github.com/sirupsen/logrus"

	"github.com/ardalan-sia/roadsim/pkg/config"
	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
	"github.com/ardalan-sia/roadsim/pkg/routing"
	"github.com/ardalan-sia/roadsim/pkg/simulation"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	g := graphmodel.NewGraph()
	a := g.NewIntersection(0, 0)
	b := g.NewIntersection(100, 0)
	c := g.NewIntersection(0, 150)
	d := g.NewIntersection(100, 150)

	mustEdge(g, a.ID, b.ID, 50, 10)
	mustEdge(g, b.ID, d.ID, 50, 10)
	mustEdge(g, a.ID, c.ID, 30, 10)
	mustEdge(g, c.ID, d.ID, 30, 10)

	cfg := config.DefaultConfig()
	sim := simulation.New(g, cfg, simulation.WithLogger(logrus.StandardLogger()))
	sim.Start()

	sim.SpawnVehicleCar(a.ID, d.ID, cfg.DefaultStrategy)
	sim.SpawnVehicleTruck(a.ID, b.ID, routing.AStarKind)

	const dt = 0.1
	for tick := 0; tick < 600 && sim.Stats().Vehicles > 0; tick++ {
		sim.Update(dt)
	}

	logrus.WithFields(logrus.Fields{
		"sim_id":         sim.ID(),
		"sim_time":       sim.GetSimTime(),
		"arrived_total":  sim.Stats().ArrivedTotal,
		"reroute_count":  sim.RerouteCount(),
		"saved_time":     sim.RerouteSavedTime(),
	}).Info("simulation finished")
}

func mustEdge(g *graphmodel.Graph, fromID, toID, maxSpeed, capacity int) {
	if _, err := g.AddEdge(fromID, toID, maxSpeed, capacity); err != nil {
		logrus.WithError(err).Fatal("failed to build demo graph")
	}
}
