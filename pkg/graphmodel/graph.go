package graphmodel

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// InsertResult is the outcome of a guarded edge insertion.
type InsertResult int

const (
	Inserted InsertResult = iota
	DuplicateRejected
	CrossingRejected
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "Inserted"
	case DuplicateRejected:
		return "DuplicateRejected"
	case CrossingRejected:
		return "CrossingRejected"
	default:
		return fmt.Sprintf("InsertResult(%d)", int(r))
	}
}

// AdjEntry is one outgoing adjacency entry: the index (not ID) of the
// neighbor node and the index of the edge connecting to it.
type AdjEntry struct {
	NeighborIndex int
	EdgeIndex     int
}

// Graph is a directed, id-addressable container of Intersections and
// Roads. Nodes and edges are kept in insertion order; lookups by ID go
// through idIndex; outgoing adjacency is kept consistent with the edge
// sequence after every insertion.
type Graph struct {
	nodes      []Intersection
	edges      []Road
	idIndex    map[int]int // node ID -> index into nodes
	adjacency  [][]AdjEntry
	nextNodeID int
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		idIndex: make(map[int]int),
	}
}

// NewIntersection allocates an Intersection with the Graph's next
// monotonic ID at position (x, y), adds it, and returns it.
func (g *Graph) NewIntersection(x, y int) Intersection {
	n := Intersection{ID: g.nextNodeID, X: x, Y: y}
	g.nextNodeID++
	// AddNode cannot fail here: the ID just came from our own counter.
	_ = g.AddNode(n)
	return n
}

// AddNode appends n to the Graph. It fails if n.ID is already present.
func (g *Graph) AddNode(n Intersection) error {
	if _, exists := g.idIndex[n.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNodeID, n.ID)
	}
	g.idIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.adjacency = append(g.adjacency, nil)
	if n.ID >= g.nextNodeID {
		g.nextNodeID = n.ID + 1
	}
	return nil
}

// AddEdge appends a Road from fromID to toID without the duplicate or
// planar-crossing guard (see AddEdgeGuarded). Endpoint existence and the
// no-self-loop invariant are always enforced; Length is computed from
// the endpoints' positions.
func (g *Graph) AddEdge(fromID, toID, maxSpeed, capacityVehicles int) (Road, error) {
	if fromID == toID {
		return Road{}, fmt.Errorf("%w: %d", ErrSelfLoop, fromID)
	}
	fromIdx, ok := g.idIndex[fromID]
	if !ok {
		return Road{}, fmt.Errorf("%w: %d", ErrUnknownEndpoint, fromID)
	}
	toIdx, ok := g.idIndex[toID]
	if !ok {
		return Road{}, fmt.Errorf("%w: %d", ErrUnknownEndpoint, toID)
	}

	length := planar.Distance(g.nodes[fromIdx].Point(), g.nodes[toIdx].Point())
	r := Road{
		FromID:           fromID,
		ToID:             toID,
		Length:           length,
		MaxSpeed:         maxSpeed,
		CapacityVehicles: capacityVehicles,
	}
	g.edges = append(g.edges, r)
	edgeIdx := len(g.edges) - 1
	g.adjacency[fromIdx] = append(g.adjacency[fromIdx], AdjEntry{NeighborIndex: toIdx, EdgeIndex: edgeIdx})
	return r, nil
}

// AddEdgeGuarded inserts like AddEdge, but first rejects an exact
// duplicate (fromID,toID) pair and rejects a new segment that properly
// intersects or collinearly overlaps any existing edge's segment (shared
// endpoints excluded from the crossing test).
func (g *Graph) AddEdgeGuarded(fromID, toID, maxSpeed, capacityVehicles int) (Road, InsertResult, error) {
	if fromID == toID {
		return Road{}, Inserted, fmt.Errorf("%w: %d", ErrSelfLoop, fromID)
	}
	fromIdx, ok := g.idIndex[fromID]
	if !ok {
		return Road{}, Inserted, fmt.Errorf("%w: %d", ErrUnknownEndpoint, fromID)
	}
	toIdx, ok := g.idIndex[toID]
	if !ok {
		return Road{}, Inserted, fmt.Errorf("%w: %d", ErrUnknownEndpoint, toID)
	}

	for _, e := range g.edges {
		if e.FromID == fromID && e.ToID == toID {
			return Road{}, DuplicateRejected, nil
		}
	}

	newFrom := point{X: int64(g.nodes[fromIdx].X), Y: int64(g.nodes[fromIdx].Y)}
	newTo := point{X: int64(g.nodes[toIdx].X), Y: int64(g.nodes[toIdx].Y)}

	for _, e := range g.edges {
		if sharesEndpoint(e, fromID, toID) {
			continue
		}
		ei := g.idIndex[e.FromID]
		ej := g.idIndex[e.ToID]
		existingFrom := point{X: int64(g.nodes[ei].X), Y: int64(g.nodes[ei].Y)}
		existingTo := point{X: int64(g.nodes[ej].X), Y: int64(g.nodes[ej].Y)}
		if segmentsIntersect(newFrom, newTo, existingFrom, existingTo) {
			return Road{}, CrossingRejected, nil
		}
	}

	r, err := g.AddEdge(fromID, toID, maxSpeed, capacityVehicles)
	return r, Inserted, err
}

func sharesEndpoint(e Road, fromID, toID int) bool {
	return e.FromID == fromID || e.FromID == toID || e.ToID == fromID || e.ToID == toID
}

// IndexOfID returns the index of the node with the given ID.
func (g *Graph) IndexOfID(id int) (int, bool) {
	idx, ok := g.idIndex[id]
	return idx, ok
}

// PositionOf returns the Euclidean position of the node with the given ID.
func (g *Graph) PositionOf(id int) (orb.Point, bool) {
	idx, ok := g.idIndex[id]
	if !ok {
		return orb.Point{}, false
	}
	return g.nodes[idx].Point(), true
}

// Outgoing returns the outgoing adjacency entries for the node at
// nodeIndex.
func (g *Graph) Outgoing(nodeIndex int) []AdjEntry {
	if nodeIndex < 0 || nodeIndex >= len(g.adjacency) {
		return nil
	}
	return g.adjacency[nodeIndex]
}

// Nodes returns the Graph's node sequence in insertion order.
func (g *Graph) Nodes() []Intersection { return g.nodes }

// Edges returns the Graph's edge sequence in insertion order.
func (g *Graph) Edges() []Road { return g.edges }

// NodeAt returns the node stored at the given index.
func (g *Graph) NodeAt(index int) Intersection { return g.nodes[index] }

// EdgeAt returns the edge stored at the given index.
func (g *Graph) EdgeAt(index int) Road { return g.edges[index] }
