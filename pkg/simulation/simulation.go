// Package simulation drives the tick loop: it owns the Graph, the
// CongestionModel, and the Vehicle collection, and advances all of them
// together on every call to Update.
package simulation

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/ardalan-sia/roadsim/pkg/config"
	"github.com/ardalan-sia/roadsim/pkg/congestion"
	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
	"github.com/ardalan-sia/roadsim/pkg/routing"
	"github.com/ardalan-sia/roadsim/pkg/vehicle"
)

// SnapshotItem is a read-only per-vehicle render record.
type SnapshotItem struct {
	ID             int
	FromID         int
	ToID           int
	ProgressOnEdge float64
	Speed          float64
}

// Stats summarizes the Simulation's current and cumulative counters.
type Stats struct {
	Vehicles     int
	ArrivedTotal int
}

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithLogger attaches a structured logger used for tick, spawn,
// arrival, and reroute telemetry.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithClock overrides the wall-clock source used only for log
// correlation timestamps; it never affects tick math.
func WithClock(clock func() time.Time) Option {
	return func(s *Simulation) { s.clock = clock }
}

// laneEntry is one (progress, vehicle) pair used to build a per-edge
// ordered lane for leader/follower resolution.
type laneEntry struct {
	progress float64
	v        *vehicle.Vehicle
}

// Simulation owns the Graph, the CongestionModel, and every Vehicle; it
// is the sole mutator of all three and advances them synchronously, one
// tick at a time, from a single driver loop.
type Simulation struct {
	id uuid.UUID

	graph      *graphmodel.Graph
	congestion *congestion.Model
	cfg        config.Config

	vehicles   map[int]*vehicle.Vehicle
	nextVehID  int

	running bool
	paused  bool
	simTime float64

	rerouteCount     int
	rerouteSavedTime float64
	arrivedTotal     int

	onPostUpdate func(stepSeconds float64)

	logger logrus.FieldLogger
	clock  func() time.Time
}

// New constructs a Simulation over graph with the given Config. The
// Simulation takes ownership of graph; callers must not mutate it
// afterward.
func New(graph *graphmodel.Graph, cfg config.Config, opts ...Option) *Simulation {
	s := &Simulation{
		id:         uuid.New(),
		graph:      graph,
		congestion: congestion.New(),
		cfg:        cfg,
		vehicles:   make(map[int]*vehicle.Vehicle),
		logger:     logrus.StandardLogger(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.congestion = congestion.New(
		congestion.WithLogger(s.logger.WithField("sim_id", s.id)),
		congestion.WithDefaultCapacity(s.cfg.DefaultCapacity),
	)
	return s
}

// ID returns the Simulation's session identifier, attached to every log
// line it emits.
func (s *Simulation) ID() uuid.UUID { return s.id }

// Start sets the Simulation running and clears any pause.
func (s *Simulation) Start() {
	s.running = true
	s.paused = false
	s.logger.WithField("sim_id", s.id).Info("simulation started")
}

// Pause pauses the Simulation; Update becomes a no-op until Start or
// Resume is called.
func (s *Simulation) Pause() { s.paused = true }

// Resume clears a pause without resetting running.
func (s *Simulation) Resume() { s.paused = false }

// Stop halts advancing without clearing any accumulated state.
func (s *Simulation) Stop() { s.running = false }

// GetSimTime returns the Simulation's virtual elapsed time in seconds.
func (s *Simulation) GetSimTime() float64 { return s.simTime }

// SetOnPostUpdate installs the callback invoked at the end of every
// successful Update, with the scaled step size.
func (s *Simulation) SetOnPostUpdate(fn func(stepSeconds float64)) { s.onPostUpdate = fn }

// Update advances the Simulation by dt real seconds, scaled by the
// configured SimulationSpeed, following the tick contract: lane
// construction, leader assignment from the pre-tick snapshot, vehicle
// integration in insertion order, arrival pruning, then the post-update
// hook.
func (s *Simulation) Update(dt float64) {
	if !s.running || s.paused {
		return
	}

	step := dt * s.cfg.SimulationSpeed
	s.simTime += step

	lanes := s.buildLanes()
	s.assignLeaders(lanes)

	ids := s.orderedVehicleIDs()
	for _, id := range ids {
		s.vehicles[id].Update(step)
	}

	s.pruneArrived()

	if s.onPostUpdate != nil {
		s.onPostUpdate(step)
	}
}

// orderedVehicleIDs returns vehicle IDs in ascending insertion order, so
// that vehicle integration order is deterministic across ticks even
// though vehicles live in a map.
func (s *Simulation) orderedVehicleIDs() []int {
	ids := lo.Keys(s.vehicles)
	sort.Ints(ids)
	return ids
}

// buildLanes groups every vehicle with a drivable edge by EdgeKey and
// sorts each group by ascending progress.
func (s *Simulation) buildLanes() map[graphmodel.EdgeKey][]laneEntry {
	lanes := make(map[graphmodel.EdgeKey][]laneEntry)
	for _, id := range s.orderedVehicleIDs() {
		v := s.vehicles[id]
		if !v.HasEdge() {
			continue
		}
		key := v.Edge()
		lanes[key] = append(lanes[key], laneEntry{progress: v.Progress(), v: v})
	}
	for key := range lanes {
		lane := lanes[key]
		sort.SliceStable(lane, func(i, j int) bool { return lane[i].progress < lane[j].progress })
		lanes[key] = lane
	}
	return lanes
}

// assignLeaders resolves, for every lane, each vehicle's leader from the
// pre-tick snapshot: the vehicle immediately ahead in progress order, or
// none for the lane's last vehicle.
func (s *Simulation) assignLeaders(lanes map[graphmodel.EdgeKey][]laneEntry) {
	for key, lane := range lanes {
		road, ok := s.roadFor(key)
		if !ok {
			continue
		}
		for i, entry := range lane {
			if i+1 < len(lane) {
				leader := lane[i+1]
				entry.v.SetLeaderInfo(vehicle.LeaderInfo{
					Present:     true,
					Gap:         maxFloat(0, leader.progress-entry.progress),
					LeaderSpeed: leader.v.Speed(),
				})
			} else {
				entry.v.SetLeaderInfo(vehicle.LeaderInfo{
					Present:     false,
					Gap:         maxFloat(0, road.Length-entry.progress),
					LeaderSpeed: 0,
				})
			}
		}
	}
}

func (s *Simulation) roadFor(key graphmodel.EdgeKey) (graphmodel.Road, bool) {
	idx, ok := s.graph.IndexOfID(key.From)
	if !ok {
		return graphmodel.Road{}, false
	}
	for _, adj := range s.graph.Outgoing(idx) {
		if s.graph.NodeAt(adj.NeighborIndex).ID == key.To {
			return s.graph.EdgeAt(adj.EdgeIndex), true
		}
	}
	return graphmodel.Road{}, false
}

// pruneArrived removes every vehicle for which HasArrived holds,
// incrementing arrivedTotal for each one removed.
func (s *Simulation) pruneArrived() {
	arrived := lo.Filter(s.orderedVehicleIDs(), func(id int, _ int) bool {
		return s.vehicles[id].HasArrived()
	})
	for _, id := range arrived {
		delete(s.vehicles, id)
		s.arrivedTotal++
		s.logger.WithFields(logrus.Fields{"sim_id": s.id, "vehicle_id": id}).Debug("vehicle arrived")
	}
}

// spawn allocates a Vehicle with idm, sets its strategy and goal,
// computes an initial route, and registers the reroute telemetry
// callback.
func (s *Simulation) spawn(idm vehicle.IDMParams, startID, goalID int, strategyKind routing.StrategyKind) int {
	id := s.nextVehID
	s.nextVehID++

	v := vehicle.New(id, idm, s.graph, s.congestion, s.cfg.RerouteCooldown)
	v.SetGoal(goalID)
	v.SetStrategy(strategyKind)
	v.SetOnReroute(s.onVehicleReroute)

	route := v.ComputeRoute(startID)
	v.SetRoute(route)

	s.vehicles[id] = v
	s.logger.WithFields(logrus.Fields{
		"sim_id": s.id, "vehicle_id": id, "start": startID, "goal": goalID,
	}).Debug("vehicle spawned")
	return id
}

// SpawnVehicleCar spawns a Car-kind vehicle from startID toward goalID
// using strategyKind, and returns its id.
func (s *Simulation) SpawnVehicleCar(startID, goalID int, strategyKind routing.StrategyKind) int {
	return s.spawn(s.cfg.Car, startID, goalID, strategyKind)
}

// SpawnVehicleTruck spawns a Truck-kind vehicle from startID toward
// goalID using strategyKind, and returns its id.
func (s *Simulation) SpawnVehicleTruck(startID, goalID int, strategyKind routing.StrategyKind) int {
	return s.spawn(s.cfg.Truck, startID, goalID, strategyKind)
}

// SetStrategyForAll reconciles every currently-live vehicle's strategy
// with strategyKind.
func (s *Simulation) SetStrategyForAll(strategyKind routing.StrategyKind) {
	for _, id := range s.orderedVehicleIDs() {
		s.vehicles[id].SetStrategy(strategyKind)
	}
}

func (s *Simulation) onVehicleReroute(vehicleID int, oldETA, newETA float64) {
	s.rerouteCount++
	s.rerouteSavedTime += maxFloat(0, oldETA-newETA)
	s.logger.WithFields(logrus.Fields{
		"sim_id": s.id, "vehicle_id": vehicleID, "old_eta": oldETA, "new_eta": newETA,
	}).Info("vehicle rerouted")
}

// RerouteCount returns the cumulative number of applied reroutes.
func (s *Simulation) RerouteCount() int { return s.rerouteCount }

// RerouteSavedTime returns the cumulative max(0, oldETA-newETA) across
// every applied reroute.
func (s *Simulation) RerouteSavedTime() float64 { return s.rerouteSavedTime }

// Snapshot returns one SnapshotItem per drivable vehicle, in ascending
// vehicle-id order.
func (s *Simulation) Snapshot() []SnapshotItem {
	ids := s.orderedVehicleIDs()
	return lo.FilterMap(ids, func(id int, _ int) (SnapshotItem, bool) {
		v := s.vehicles[id]
		if !v.HasEdge() {
			return SnapshotItem{}, false
		}
		edge := v.Edge()
		return SnapshotItem{
			ID:             v.ID(),
			FromID:         edge.From,
			ToID:           edge.To,
			ProgressOnEdge: v.Progress(),
			Speed:          v.Speed(),
		}, true
	})
}

// AverageSpeed returns the mean speed across all currently-live
// vehicles, or 0 if there are none.
func (s *Simulation) AverageSpeed() float64 {
	if len(s.vehicles) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range s.vehicles {
		total += v.Speed()
	}
	return total / float64(len(s.vehicles))
}

// Stats returns the Simulation's current and cumulative counters.
func (s *Simulation) Stats() Stats {
	return Stats{Vehicles: len(s.vehicles), ArrivedTotal: s.arrivedTotal}
}

// Graph returns the Simulation's owned Graph. Callers must not mutate
// it.
func (s *Simulation) Graph() *graphmodel.Graph { return s.graph }

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
