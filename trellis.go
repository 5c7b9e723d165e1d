package trellis

import "math"

// Vec2 is a 2D vector used for positions, offsets, sizes of movement, and
// directions throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Size is a width/height pair in graph units.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// RectAround returns the rectangle spanning two arbitrary corner points.
// The points may be given in any order.
func RectAround(a, b Vec2) Rect {
	x := math.Min(a.X, b.X)
	y := math.Min(a.Y, b.Y)
	return Rect{X: x, Y: y, Width: math.Max(a.X, b.X) - x, Height: math.Max(a.Y, b.Y) - y}
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// ContainsRect reports whether other lies entirely inside r, edges included.
// Marquee selection uses this: a rectangle merely crossing r's edge does
// not qualify.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Expand returns the rectangle grown by amount on every side. A negative
// amount shrinks it.
func (r Rect) Expand(amount float64) Rect {
	return Rect{
		X:      r.X - amount,
		Y:      r.Y - amount,
		Width:  r.Width + 2*amount,
		Height: r.Height + 2*amount,
	}
}

// Center returns the rectangle's center point.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// validBounds reports whether r is usable as index geometry: all components
// finite and both dimensions positive. An entry with degenerate bounds that
// never matches any query beats one that matches everything, so rebuilds and
// updates drop rectangles that fail this check.
func validBounds(r Rect) bool {
	for _, v := range [4]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// HitKind identifies which kind of element a hit test resolved to.
type HitKind uint8

const (
	HitNone       HitKind = iota // empty canvas
	HitNode                      // a node body
	HitPort                      // a port on a node
	HitConnection                // a connection path
	HitAnnotation                // a background annotation
)

// String returns the lowercase name of the hit kind.
func (k HitKind) String() string {
	switch k {
	case HitNode:
		return "node"
	case HitPort:
		return "port"
	case HitConnection:
		return "connection"
	case HitAnnotation:
		return "annotation"
	default:
		return "canvas"
	}
}

// HitResult is the typed answer of a point hit test. Kind selects which id
// fields are meaningful; Position is the graph-space query point, echoed
// back so interaction code can start drags without recomputing it.
type HitResult struct {
	Kind     HitKind
	Position Vec2

	// Valid for HitNode and HitPort.
	NodeID string
	// Valid for HitPort.
	PortID   string
	IsOutput bool
	// Valid for HitConnection.
	ConnectionID string
	// Valid for HitAnnotation.
	AnnotationID string
}

// PortAddress names one port on one node, as returned by HitTestPort.
type PortAddress struct {
	NodeID   string
	PortID   string
	IsOutput bool
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
