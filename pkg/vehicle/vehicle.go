package vehicle

import (
	"math"
	"time"

	"github.com/ardalan-sia/roadsim/pkg/congestion"
	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
	"github.com/ardalan-sia/roadsim/pkg/routing"
)

// lookaheadEpsilon and edgeEndEpsilon are the small positive slacks used
// by the kinematic lookahead cap and the edge-end transition test,
// respectively.
const (
	lookaheadEpsilon = 1e-6
	edgeEndEpsilon   = 1e-6
)

// RerouteFunc is invoked whenever a Vehicle applies a recomputed route.
type RerouteFunc func(vehicleID int, oldETA, newETA float64)

// Vehicle follows a route edge-by-edge, integrating IDM longitudinal
// dynamics each tick and requesting re-routes when it observes
// congestion on the edge it just entered.
type Vehicle struct {
	id int

	graph      *graphmodel.Graph
	congestion *congestion.Model

	hasEdge  bool
	edge     graphmodel.EdgeKey
	progress float64
	speed    float64

	route      []int
	routeIndex int

	goalID        int
	strategy      routing.Strategy
	strategyKind  routing.StrategyKind
	cooldown      float64 // seconds
	sinceRecomp   float64
	pendingReroute bool

	idm    IDMParams
	leader LeaderInfo

	onReroute RerouteFunc
}

// New constructs a Vehicle with the given IDMParams. It has no route and
// no strategy until SetStrategy/SetRoute are called.
func New(id int, idm IDMParams, graph *graphmodel.Graph, congestionModel *congestion.Model, cooldown time.Duration) *Vehicle {
	return &Vehicle{
		id:          id,
		idm:         idm,
		graph:       graph,
		congestion:  congestionModel,
		cooldown:    cooldown.Seconds(),
		sinceRecomp: cooldown.Seconds(),
	}
}

// NewCar constructs a Vehicle using the default Car IDMParams.
func NewCar(id int, graph *graphmodel.Graph, congestionModel *congestion.Model, cooldown time.Duration) *Vehicle {
	return New(id, CarIDM(), graph, congestionModel, cooldown)
}

// NewTruck constructs a Vehicle using the default Truck IDMParams.
func NewTruck(id int, graph *graphmodel.Graph, congestionModel *congestion.Model, cooldown time.Duration) *Vehicle {
	return New(id, TruckIDM(), graph, congestionModel, cooldown)
}

// ID returns the Vehicle's stable identity.
func (v *Vehicle) ID() int { return v.id }

// SetGoal sets the node ID recomputeRouteIfNeeded plans toward.
func (v *Vehicle) SetGoal(goalID int) { v.goalID = goalID }

// GoalID returns the Vehicle's current goal node ID.
func (v *Vehicle) GoalID() int { return v.goalID }

// SetOnReroute installs the callback invoked on every applied reroute.
func (v *Vehicle) SetOnReroute(fn RerouteFunc) { v.onReroute = fn }

// HasEdge reports whether the Vehicle is currently on a drivable edge.
func (v *Vehicle) HasEdge() bool { return v.hasEdge }

// Edge returns the Vehicle's current edge. Only meaningful if HasEdge.
func (v *Vehicle) Edge() graphmodel.EdgeKey { return v.edge }

// Progress returns the Vehicle's progress along its current edge.
func (v *Vehicle) Progress() float64 { return v.progress }

// Speed returns the Vehicle's current speed.
func (v *Vehicle) Speed() float64 { return v.speed }

// Route returns the Vehicle's full route as a sequence of node IDs.
func (v *Vehicle) Route() []int { return v.route }

// HasArrived reports whether the Vehicle has reached the end of its
// route and has no drivable edge left.
func (v *Vehicle) HasArrived() bool {
	return !v.hasEdge && len(v.route) > 0 && v.routeIndex+1 >= len(v.route)
}

// SetStrategy swaps the routing strategy backing the Vehicle's own
// EdgeTimeFn (congestion.EdgeTime(edge, idm.V0)), and arms an immediate
// reroute attempt by satisfying the cooldown.
func (v *Vehicle) SetStrategy(kind routing.StrategyKind) {
	timeFn := func(r graphmodel.Road) float64 { return v.congestion.EdgeTime(r, v.idm.V0) }
	switch kind {
	case routing.AStarKind:
		v.strategy = routing.NewAStar(timeFn)
	default:
		v.strategy = routing.NewDijkstra(timeFn)
	}
	v.strategyKind = kind
	v.sinceRecomp = v.cooldown
	if v.hasEdge {
		v.pendingReroute = true
	}
}

// StrategyKind returns the kind of the currently installed strategy.
func (v *Vehicle) StrategyKind() routing.StrategyKind { return v.strategyKind }

// ComputeRoute delegates to the Vehicle's installed strategy.
func (v *Vehicle) ComputeRoute(startID int) []int {
	if v.strategy == nil {
		return nil
	}
	return v.strategy.ComputeRoute(startID, v.goalID, v.graph)
}

// SetRoute replaces the Vehicle's route, resetting index, progress, and
// speed to zero; if ids has at least two elements, the Vehicle enters
// edge (ids[0],ids[1]); otherwise it has no drivable edge.
func (v *Vehicle) SetRoute(ids []int) {
	if v.hasEdge {
		v.leaveEdge()
	}
	v.route = append([]int(nil), ids...)
	v.routeIndex = 0
	v.progress = 0
	v.speed = 0
	v.pendingReroute = false
	if len(ids) >= 2 {
		v.enterEdge(ids[0], ids[1])
	} else {
		v.hasEdge = false
	}
}

// SetLeaderInfo installs the per-tick leader input.
func (v *Vehicle) SetLeaderInfo(info LeaderInfo) { v.leader = info }

// ClearLeaderInfo clears the per-tick leader input.
func (v *Vehicle) ClearLeaderInfo() { v.leader = LeaderInfo{} }

// Update integrates one tick of longitudinal motion.
func (v *Vehicle) Update(dt float64) {
	v.sinceRecomp += dt
	if dt <= 0 || !v.hasEdge {
		return
	}

	// A reroute armed while the Vehicle still sits at the start node of its
	// edge (e.g. the first edge entered by SetRoute) is attempted before it
	// moves, so the new route may begin with a different first edge.
	if v.pendingReroute && v.progress <= congestion.Epsilon {
		v.recomputeRouteIfNeeded()
	}

	road, err := v.currentRoad()
	if err != nil {
		return
	}

	v0Local := math.Min(v.idm.V0, v.congestion.EffectiveSpeed(road))
	v0 := v0Local

	if v.routeIndex+2 < len(v.route) {
		nextFrom := v.edge.To
		nextTo := v.route[v.routeIndex+2]
		if nextRoad, ok := v.findRoad(nextFrom, nextTo); ok {
			v0Next := math.Min(v.idm.V0, v.congestion.EffectiveSpeed(nextRoad))
			sRem := math.Max(0, road.Length-v.progress)
			bCap := math.Max(0.1, v.idm.B)
			vcap := math.Sqrt(v0Next*v0Next+2*bCap*sRem) + lookaheadEpsilon
			v0 = math.Min(v0Local, vcap)
		}
	}

	var accel float64
	if v.leader.Present {
		accel = idmAcceleration(v.speed, v0, v.idm, v.leader)
	} else {
		accel = relaxToward(v.speed, v0, dt, v.idm)
	}

	vNext := v.speed + accel*dt
	if accel > 0 {
		vNext = math.Min(vNext, v0)
	}
	if vNext < 0 {
		vNext = 0
	}
	v.progress += vNext * dt
	v.speed = vNext

	if v.progress+edgeEndEpsilon >= road.Length {
		v.leaveEdge()
		v.routeIndex++
		if v.routeIndex+1 >= len(v.route) {
			v.speed = 0
			v.hasEdge = false
			return
		}
		v.enterEdge(v.route[v.routeIndex], v.route[v.routeIndex+1])
	}

	if v.pendingReroute {
		v.recomputeRouteIfNeeded()
	}
}

// idmAcceleration computes the car-following acceleration for a Vehicle
// with a present leader, clamped to [-max(0.1,b), max(0.1,a)].
func idmAcceleration(v, v0 float64, p IDMParams, leader LeaderInfo) float64 {
	dv := math.Max(0, v-leader.LeaderSpeed)
	denom := 2 * math.Sqrt(math.Max(1e-9, p.A*p.B))
	sStar := p.S0 + math.Max(0, v*p.T+v*dv/denom)
	gap := math.Max(leader.Gap, congestion.Epsilon)
	accel := p.A * (1 - math.Pow(v/math.Max(v0, congestion.Epsilon), p.Delta) - math.Pow(sStar/gap, 2))
	return clamp(accel, -math.Max(0.1, p.B), math.Max(0.1, p.A))
}

// relaxToward computes the open-road acceleration that relaxes v toward
// v0 within the step, without overshooting in a single tick.
func relaxToward(v, v0, dt float64, p IDMParams) float64 {
	dtSafe := math.Max(1e-3, dt)
	switch {
	case v < v0:
		return math.Min(p.A, (v0-v)/dtSafe)
	case v > v0:
		return -math.Min(p.B, (v-v0)/dtSafe)
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// currentRoad resolves the Vehicle's current edge to a Road, or returns
// errNoActiveEdge/errTransientMissingEdge — both swallowed by callers.
func (v *Vehicle) currentRoad() (graphmodel.Road, error) {
	if !v.hasEdge {
		return graphmodel.Road{}, errNoActiveEdge
	}
	road, ok := v.findRoad(v.edge.From, v.edge.To)
	if !ok {
		return graphmodel.Road{}, errTransientMissingEdge
	}
	return road, nil
}

func (v *Vehicle) findRoad(fromID, toID int) (graphmodel.Road, bool) {
	idx, ok := v.graph.IndexOfID(fromID)
	if !ok {
		return graphmodel.Road{}, false
	}
	for _, adj := range v.graph.Outgoing(idx) {
		if v.graph.NodeAt(adj.NeighborIndex).ID == toID {
			return v.graph.EdgeAt(adj.EdgeIndex), true
		}
	}
	return graphmodel.Road{}, false
}

// enterEdge increments congestion for (fromID,toID), caps the Vehicle's
// current speed to the new edge's min(v0,effectiveSpeed), and arms
// pendingReroute if the new edge is running below free-flow speed.
func (v *Vehicle) enterEdge(fromID, toID int) {
	road, ok := v.findRoad(fromID, toID)
	if !ok {
		v.hasEdge = false
		return
	}
	v.edge = graphmodel.EdgeKey{From: fromID, To: toID}
	v.hasEdge = true
	v.progress = 0
	v.congestion.OnEnterEdge(road)

	eff := v.congestion.EffectiveSpeed(road)
	v.speed = math.Min(v.speed, math.Min(v.idm.V0, eff))
	if eff < float64(road.MaxSpeed) {
		v.pendingReroute = true
	}
}

// leaveEdge decrements congestion for the Vehicle's current edge and
// clears its leader info. Mandatory on every path that abandons an edge.
func (v *Vehicle) leaveEdge() {
	if !v.hasEdge {
		return
	}
	if road, ok := v.findRoad(v.edge.From, v.edge.To); ok {
		v.congestion.OnExitEdge(road)
	}
	v.leader = LeaderInfo{}
	v.hasEdge = false
}

// recomputeRouteIfNeeded is gated by the reroute cooldown. It plans from
// the Vehicle's current node if it is exactly at one (progress == 0), or
// from the current edge's "to" node otherwise. A candidate path of
// length < 2, or equal to the Vehicle's current remaining route, is
// discarded without resetting the cooldown. Any other candidate is
// applied unconditionally; oldETA/newETA are reported to onReroute
// regardless of whether the new route is actually faster.
func (v *Vehicle) recomputeRouteIfNeeded() {
	if v.sinceRecomp < v.cooldown || v.strategy == nil {
		return
	}

	atNode := v.progress <= congestion.Epsilon
	startID := v.edge.To
	if atNode {
		startID = v.edge.From
	}

	candidate := v.strategy.ComputeRoute(startID, v.goalID, v.graph)
	if len(candidate) < 2 {
		v.pendingReroute = false
		return
	}

	var newFull []int
	if candidate[0] == v.edge.From {
		newFull = candidate
	} else {
		newFull = append([]int{v.edge.From}, candidate...)
	}
	oldRemaining := v.route[v.routeIndex:]

	if intSliceEqual(newFull, oldRemaining) {
		v.pendingReroute = false
		return
	}

	oldETA := v.estimateETA(oldRemaining)
	newETA := v.estimateETA(newFull)

	if atNode {
		v.applyRerouteAtNode(newFull)
	} else {
		v.route = newFull
		v.routeIndex = 0
	}
	v.sinceRecomp = 0
	v.pendingReroute = false

	if v.onReroute != nil {
		v.onReroute(v.id, oldETA, newETA)
	}
}

// applyRerouteAtNode replaces the route while the Vehicle sits exactly
// at a node (progress == 0), preserving its current speed rather than
// resetting it the way a plain SetRoute would.
func (v *Vehicle) applyRerouteAtNode(newFull []int) {
	preservedSpeed := v.speed
	v.leaveEdge()
	v.route = newFull
	v.routeIndex = 0
	v.enterEdge(newFull[0], newFull[1])
	v.speed = math.Min(preservedSpeed, v.speed)
}

// estimateETA sums length/effectiveSpeed over path's edges, using the
// Vehicle's current remaining distance for the first edge when it
// matches the Vehicle's current edge exactly.
func (v *Vehicle) estimateETA(path []int) float64 {
	if len(path) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		road, ok := v.findRoad(path[i], path[i+1])
		if !ok {
			continue
		}
		length := road.Length
		if i == 0 && v.hasEdge && path[0] == v.edge.From && path[1] == v.edge.To {
			length = math.Max(0, road.Length-v.progress)
		}
		speed := math.Max(v.congestion.EffectiveSpeed(road), congestion.Epsilon)
		total += length / speed
	}
	return total
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
