package graphmodel

// Integer segment-intersection tests used by AddEdgeGuarded's planar
// guard. All arithmetic widens to int64 before multiplying so that
// coordinates on the order of tens of thousands cannot overflow the
// cross-product terms.

type point struct{ X, Y int64 }

// orientation returns the cross product (b-a) x (c-a): positive for
// counter-clockwise, negative for clockwise, zero for collinear. sign
// reduces it to -1, 0 or 1.
func orientation(a, b, c point) int64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether point p, known to be collinear with segment
// (a,b), lies within that segment's bounding box.
func onSegment(a, b, p point) bool {
	return min64(a.X, b.X) <= p.X && p.X <= max64(a.X, b.X) &&
		min64(a.Y, b.Y) <= p.Y && p.Y <= max64(a.Y, b.Y)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// segmentsIntersect reports whether segment (p1,p2) and segment (p3,p4)
// properly intersect or collinearly overlap, per the standard
// orientation/on-segment test. Shared endpoints are handled by the
// caller (AddEdgeGuarded excludes them from consideration before calling
// this).
func segmentsIntersect(p1, p2, p3, p4 point) bool {
	o1 := sign(orientation(p1, p2, p3))
	o2 := sign(orientation(p1, p2, p4))
	o3 := sign(orientation(p3, p4, p1))
	o4 := sign(orientation(p3, p4, p2))

	if o1 != o2 && o3 != o4 {
		return true
	}

	if o1 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if o2 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	if o3 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if o4 == 0 && onSegment(p3, p4, p2) {
		return true
	}

	return false
}
