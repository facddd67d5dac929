// Package graphmodel implements the directed, planar graph of
// intersections and roads that the rest of the simulation runs on.
package graphmodel

import "github.com/paulmach/orb"

// Intersection is a node in the road network. Its ID is assigned by the
// owning Graph when it is added and is stable for the Intersection's
// lifetime; equality between two Intersections is equality of ID.
type Intersection struct {
	ID   int
	X, Y int
}

// Point returns the intersection's position as an orb.Point, for
// consumers that need Euclidean distance (routing heuristics, road
// length) rather than the exact integer coordinates used by the planar
// guard.
func (n Intersection) Point() orb.Point {
	return orb.Point{float64(n.X), float64(n.Y)}
}

// DefaultCapacity is the vehicle capacity assumed for a Road whose
// CapacityVehicles is non-positive.
const DefaultCapacity = 10

// Road is a directed edge between two distinct Intersections.
type Road struct {
	FromID, ToID      int
	Length            float64 // Euclidean distance at construction, immutable.
	MaxSpeed          int     // positive
	CapacityVehicles  int     // stored as given; a value <= 0 is resolved to a default when read (Capacity, congestion.Model).
}

// Key returns the EdgeKey identifying this Road's direction.
func (r Road) Key() EdgeKey {
	return EdgeKey{From: r.FromID, To: r.ToID}
}

// Capacity returns the Road's effective capacity, applying DefaultCapacity
// when the stored value is non-positive.
func (r Road) Capacity() int {
	if r.CapacityVehicles <= 0 {
		return DefaultCapacity
	}
	return r.CapacityVehicles
}

// EdgeKey identifies a directed edge for state keyed outside of the
// Graph itself (congestion counts, speed overrides).
type EdgeKey struct {
	From, To int
}
