package trellis

// Viewport maps between screen pixel space and graph space. X and Y are the
// pan offset in screen pixels and Zoom is the uniform scale factor
// (1.0 = no zoom, >1 = zoom in, <1 = zoom out). Zoom must be positive;
// callers clamp it to their configured range before constructing a
// Viewport — the transform itself never clamps.
//
// Viewport is an immutable value: pan and zoom ticks replace the whole
// value rather than mutating it, so a Viewport captured at the start of a
// gesture stays valid for the gesture's arithmetic.
type Viewport struct {
	X, Y float64
	Zoom float64
}

// NewViewport returns a viewport with no pan and zoom 1.
func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// WithPan returns a copy of v panned to the given screen-pixel offset.
func (v Viewport) WithPan(x, y float64) Viewport {
	v.X = x
	v.Y = y
	return v
}

// WithZoom returns a copy of v at the given zoom factor. The caller is
// responsible for clamping zoom to its allowed range first.
func (v Viewport) WithZoom(zoom float64) Viewport {
	v.Zoom = zoom
	return v
}

// ScreenToGraph converts a screen-space point to graph space.
func (v Viewport) ScreenToGraph(p Vec2) Vec2 {
	return Vec2{X: (p.X - v.X) / v.Zoom, Y: (p.Y - v.Y) / v.Zoom}
}

// GraphToScreen converts a graph-space point to screen space.
func (v Viewport) GraphToScreen(p Vec2) Vec2 {
	return Vec2{X: p.X*v.Zoom + v.X, Y: p.Y*v.Zoom + v.Y}
}

// ScreenToGraphDelta converts a screen-space movement to a graph-space
// movement. Only scale applies — no translation — so accumulated drag
// deltas stay exact under zoom regardless of frame rate.
func (v Viewport) ScreenToGraphDelta(d Vec2) Vec2 {
	return Vec2{X: d.X / v.Zoom, Y: d.Y / v.Zoom}
}

// VisibleArea returns the graph-space rectangle currently on screen for a
// rendering surface of the given size, by mapping the screen corners
// through ScreenToGraph.
func (v Viewport) VisibleArea(screen Size) Rect {
	tl := v.ScreenToGraph(Vec2{})
	br := v.ScreenToGraph(Vec2{X: screen.Width, Y: screen.Height})
	return RectAround(tl, br)
}

// IsRectVisible reports whether any part of the graph-space rectangle is
// on screen. Renderers use this to cull off-screen elements.
func (v Viewport) IsRectVisible(r Rect, screen Size) bool {
	return v.VisibleArea(screen).Intersects(r)
}

// ZoomAt returns a copy of v with the given zoom factor, adjusting the pan
// so that the graph point under the given screen point stays fixed. This is
// the wheel-zoom primitive: zoom toward the cursor, not the origin.
func (v Viewport) ZoomAt(zoom float64, screenPoint Vec2) Viewport {
	anchor := v.ScreenToGraph(screenPoint)
	v.Zoom = zoom
	v.X = screenPoint.X - anchor.X*zoom
	v.Y = screenPoint.Y - anchor.Y*zoom
	return v
}
