package trellis

import "testing"

func TestCircleShapeContains(t *testing.T) {
	c := CircleShape{CenterX: 50, CenterY: 50, Radius: 10}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 50, 50, true},
		{"on the rim", 60, 50, true},
		{"inside", 55, 55, true},
		{"bounding-box corner", 42, 42, false},
		{"far away", 0, 0, false},
	}
	for _, tt := range tests {
		if got := c.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: Contains(%v,%v) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}

	if b := c.Bounds(); b != (Rect{X: 40, Y: 40, Width: 20, Height: 20}) {
		t.Errorf("Bounds = %+v, want bounding square", b)
	}
}

func TestPolygonShapeContains(t *testing.T) {
	// A diamond centered on (50, 50).
	diamond := PolygonShape{Points: []Vec2{
		{X: 50, Y: 30}, {X: 70, Y: 50}, {X: 50, Y: 70}, {X: 30, Y: 50},
	}}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 50, 50, true},
		{"vertex", 50, 30, true},
		{"edge midpoint", 60, 40, true},
		{"bounding-box corner", 31, 31, false},
		{"outside", 100, 100, false},
	}
	for _, tt := range tests {
		if got := diamond.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: Contains(%v,%v) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}

	if b := diamond.Bounds(); b != (Rect{X: 30, Y: 30, Width: 40, Height: 40}) {
		t.Errorf("Bounds = %+v", b)
	}

	// Reversed winding gives the same answers.
	reversed := PolygonShape{Points: []Vec2{
		{X: 30, Y: 50}, {X: 50, Y: 70}, {X: 70, Y: 50}, {X: 50, Y: 30},
	}}
	if !reversed.Contains(50, 50) || reversed.Contains(31, 31) {
		t.Error("reversed winding changed containment")
	}

	// Fewer than three points is never a hit.
	if (PolygonShape{Points: []Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}}}).Contains(5, 0) {
		t.Error("degenerate polygon contains a point")
	}
}

func TestRectShape(t *testing.T) {
	s := RectShape{Rect: Rect{X: 0, Y: 0, Width: 10, Height: 10}}
	if !s.Contains(5, 5) || s.Contains(11, 5) {
		t.Error("RectShape containment wrong")
	}
	if s.Bounds() != s.Rect {
		t.Error("RectShape bounds differ from its rect")
	}
}
