package trellis

import "math"

// Router computes connection path geometry: the polyline a renderer draws,
// the rectangle segments the spatial index stores, and the precise
// distance-to-path test used to confirm near-miss hit candidates. It is the
// built-in implementation of the SpatialIndex Segments and PathHit
// resolvers; applications with their own path renderer plug in their own.
type Router struct {
	// Tolerance is the maximum distance (graph units) at which a point
	// still counts as on the path. Keep equal to the index's HitTolerance
	// so the precise test never rejects a point the segment bounds accept
	// for the wrong reason.
	Tolerance float64
	// CurveSegments is the number of subdivisions used to approximate a
	// bezier path (default 16).
	CurveSegments int
}

// NewRouter creates a router with default tolerance and curve resolution.
func NewRouter() *Router {
	return &Router{Tolerance: 4, CurveSegments: 16}
}

// Path returns the polyline approximating the connection's rendered path,
// from source anchor to target anchor.
func (r *Router) Path(c *Connection, source, target *Node) []Vec2 {
	a := connectionAnchor(source, c.SourcePort)
	b := connectionAnchor(target, c.TargetPort)

	switch c.Style {
	case PathOrthogonal:
		// Horizontal-vertical-horizontal elbow through the midpoint.
		midX := (a.X + b.X) / 2
		return []Vec2{a, {X: midX, Y: a.Y}, {X: midX, Y: b.Y}, b}

	case PathBezier:
		segs := r.CurveSegments
		if segs <= 0 {
			segs = 16
		}
		// Horizontal tangents at both ends, matching the usual left-to-right
		// flow-editor look.
		reach := math.Max(40, math.Abs(b.X-a.X)/2)
		c1 := Vec2{X: a.X + reach, Y: a.Y}
		c2 := Vec2{X: b.X - reach, Y: b.Y}
		pts := make([]Vec2, segs+1)
		for i := 0; i <= segs; i++ {
			t := float64(i) / float64(segs)
			u := 1 - t
			u2 := u * u
			t2 := t * t
			pts[i] = Vec2{
				X: u2*u*a.X + 3*u2*t*c1.X + 3*u*t2*c2.X + t2*t*b.X,
				Y: u2*u*a.Y + 3*u2*t*c1.Y + 3*u*t2*c2.Y + t2*t*b.Y,
			}
		}
		return pts

	default: // PathStraight
		return []Vec2{a, b}
	}
}

// Segments returns one bounding rectangle per polyline edge. A single box
// around a curved path would be far too loose for hit-testing; per-edge
// boxes reject most of the path cheaply and leave only near misses for the
// precise test.
func (r *Router) Segments(c *Connection, source, target *Node) []Rect {
	pts := r.Path(c, source, target)
	if len(pts) < 2 {
		return nil
	}
	segs := make([]Rect, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, RectAround(pts[i], pts[i+1]))
	}
	return segs
}

// PathHit reports whether p lies within Tolerance of the connection's path.
func (r *Router) PathHit(c *Connection, source, target *Node, p Vec2) bool {
	pts := r.Path(c, source, target)
	tol := r.Tolerance
	for i := 0; i+1 < len(pts); i++ {
		if pointSegmentDistance(p, pts[i], pts[i+1]) <= tol {
			return true
		}
	}
	return false
}

// connectionAnchor returns the graph-space anchor for one end of a
// connection: the named port's anchor, or the node's center when the port
// id does not resolve (ports may be renamed or removed independently of
// connections).
func connectionAnchor(n *Node, portID string) Vec2 {
	if p := n.Port(portID); p != nil {
		return n.PortAnchor(p)
	}
	return n.Bounds().Center()
}

// pointSegmentDistance returns the distance from p to the line segment ab.
func pointSegmentDistance(p, a, b Vec2) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	t := 0.0
	if lenSq > 1e-12 {
		t = ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	dx := p.X - (a.X + abx*t)
	dy := p.Y - (a.Y + aby*t)
	return math.Sqrt(dx*dx + dy*dy)
}
