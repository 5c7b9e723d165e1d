package trellis

import "math"

// Shape is a hit region in graph coordinates. Node shape builders return a
// Shape when a node's outline is not its plain bounding rectangle; the
// index uses Bounds for the broad phase and Contains for the exact test.
type Shape interface {
	Contains(x, y float64) bool
	Bounds() Rect
}

// RectShape is an axis-aligned rectangular hit area.
type RectShape struct {
	Rect Rect
}

// Contains reports whether (x, y) lies inside the rectangle.
func (s RectShape) Contains(x, y float64) bool {
	return s.Rect.Contains(x, y)
}

// Bounds returns the rectangle itself.
func (s RectShape) Bounds() Rect {
	return s.Rect
}

// CircleShape is a circular hit area.
type CircleShape struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (s CircleShape) Contains(x, y float64) bool {
	dx := x - s.CenterX
	dy := y - s.CenterY
	return dx*dx+dy*dy <= s.Radius*s.Radius
}

// Bounds returns the circle's bounding square.
func (s CircleShape) Bounds() Rect {
	return Rect{
		X:      s.CenterX - s.Radius,
		Y:      s.CenterY - s.Radius,
		Width:  2 * s.Radius,
		Height: 2 * s.Radius,
	}
}

// PolygonShape is a convex polygon hit area.
// Points must define a convex polygon in either winding order.
type PolygonShape struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using a
// cross-product sign test.
func (s PolygonShape) Contains(x, y float64) bool {
	n := len(s.Points)
	if n < 3 {
		return false
	}

	// Check that the point is on the same side of every edge.
	var positive, negative bool
	for i := 0; i < n; i++ {
		x1 := s.Points[i].X
		y1 := s.Points[i].Y
		j := (i + 1) % n
		x2 := s.Points[j].X
		y2 := s.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// Bounds returns the polygon's axis-aligned bounding rectangle.
func (s PolygonShape) Bounds() Rect {
	if len(s.Points) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range s.Points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
