// Package congestion implements the tiered congestion model: per-edge
// live vehicle counts and optional speed overrides, reduced to an
// effective speed and an edge traversal time.
package congestion

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ardalan-sia/roadsim/pkg/graphmodel"
)

// Epsilon is the floor applied to lengths and speeds so that division
// never produces zero or a non-finite result.
const Epsilon = 1e-6

// EdgeState is the mutable per-edge congestion record.
type EdgeState struct {
	count              int
	speedLimitOverride *float64
}

// Model is the per-edge congestion state keyed by EdgeKey, shared by all
// vehicles. Writers (OnEnterEdge, OnExitEdge, SetEdgeSpeedLimit,
// ClearEdgeSpeedLimit) and readers (EffectiveSpeed, EdgeTime) are only
// ever called from the single-threaded simulation tick; Model holds no
// internal lock.
type Model struct {
	edges           map[graphmodel.EdgeKey]*EdgeState
	logger          logrus.FieldLogger
	defaultCapacity int
}

// Option configures a Model at construction.
type Option func(*Model)

// WithLogger attaches a structured logger used for tier-transition
// observability. It never affects EffectiveSpeed/EdgeTime's return
// values.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) { m.logger = l }
}

// WithDefaultCapacity overrides the vehicle capacity assumed for a Road
// whose CapacityVehicles is non-positive, mirroring
// CongestionModel::setDefaultCapacityVehicles in the source system. It
// is the single place this value is resolved; Road.Capacity()'s own
// package-constant fallback is only used by callers that bypass Model
// entirely.
func WithDefaultCapacity(n int) Option {
	return func(m *Model) { m.defaultCapacity = n }
}

// New returns an empty congestion Model.
func New(opts ...Option) *Model {
	m := &Model{
		edges:           make(map[graphmodel.EdgeKey]*EdgeState),
		logger:          logrus.StandardLogger(),
		defaultCapacity: graphmodel.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) stateFor(key graphmodel.EdgeKey) *EdgeState {
	st, ok := m.edges[key]
	if !ok {
		st = &EdgeState{}
		m.edges[key] = st
	}
	return st
}

// capacityFor resolves road's effective capacity, falling back to the
// Model's configured default when the Road carries none of its own.
func (m *Model) capacityFor(road graphmodel.Road) int {
	if road.CapacityVehicles > 0 {
		return road.CapacityVehicles
	}
	if m.defaultCapacity > 0 {
		return m.defaultCapacity
	}
	return graphmodel.DefaultCapacity
}

func tier(count, capacity int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(capacity)))
}

// OnEnterEdge increments the live vehicle count for road's edge.
func (m *Model) OnEnterEdge(road graphmodel.Road) {
	key := road.Key()
	capacity := m.capacityFor(road)
	st := m.stateFor(key)
	before := tier(st.count, capacity)
	st.count++
	after := tier(st.count, capacity)
	if m.logger != nil && after != before {
		m.logger.WithFields(logrus.Fields{
			"edge": key, "tier_before": before, "tier_after": after,
		}).Debug("congestion tier changed")
	}
}

// OnExitEdge decrements the live vehicle count for road's edge, floored
// at zero. Entries with zero count and no override are reclaimed.
func (m *Model) OnExitEdge(road graphmodel.Road) {
	key := road.Key()
	st, ok := m.edges[key]
	if !ok {
		return
	}
	capacity := m.capacityFor(road)
	before := tier(st.count, capacity)
	if st.count > 0 {
		st.count--
	}
	after := tier(st.count, capacity)
	if m.logger != nil && after != before {
		m.logger.WithFields(logrus.Fields{
			"edge": key, "tier_before": before, "tier_after": after,
		}).Debug("congestion tier changed")
	}
	if st.count == 0 && st.speedLimitOverride == nil {
		delete(m.edges, key)
	}
}

// SetEdgeSpeedLimit sets a positive cap applied to the edge's free-flow
// speed.
func (m *Model) SetEdgeSpeedLimit(key graphmodel.EdgeKey, limit float64) {
	st := m.stateFor(key)
	v := limit
	st.speedLimitOverride = &v
}

// ClearEdgeSpeedLimit clears any speed override on key.
func (m *Model) ClearEdgeSpeedLimit(key graphmodel.EdgeKey) {
	st, ok := m.edges[key]
	if !ok {
		return
	}
	st.speedLimitOverride = nil
	if st.count == 0 {
		delete(m.edges, key)
	}
}

// Count returns the current live vehicle count on key's edge.
func (m *Model) Count(key graphmodel.EdgeKey) int {
	st, ok := m.edges[key]
	if !ok {
		return 0
	}
	return st.count
}

// EffectiveSpeed computes the speed a vehicle may use on road given its
// current congestion and any override, per the tiered halving rule. The
// result is always strictly positive.
func (m *Model) EffectiveSpeed(road graphmodel.Road) float64 {
	vFree := math.Max(1, float64(road.MaxSpeed))
	key := road.Key()
	st := m.edges[key]
	if st != nil && st.speedLimitOverride != nil {
		vFree = math.Min(vFree, *st.speedLimitOverride)
	}

	count := 0
	if st != nil {
		count = st.count
	}
	if count <= 0 {
		return math.Max(vFree, Epsilon)
	}

	x := m.capacityFor(road)
	if x < 1 {
		x = 1
	}
	mTier := tier(count, x)
	v := vFree / math.Pow(2, float64(mTier-1))
	return math.Max(v, Epsilon)
}

// EdgeTime returns the strictly positive time to cross road at the
// given vehicle speed cap, given current congestion.
func (m *Model) EdgeTime(road graphmodel.Road, vehicleMaxSpeed float64) float64 {
	length := math.Max(road.Length, Epsilon)
	speedCap := math.Max(1, vehicleMaxSpeed)
	speed := math.Min(speedCap, m.EffectiveSpeed(road))
	if speed <= 0 {
		speed = Epsilon
	}
	t := length / speed
	if t == 0 || !isFiniteNonNegative(t) {
		panic(ErrInvariantViolation)
	}
	return t
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
