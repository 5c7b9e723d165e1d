package trellis

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Overlay colors, one per entry kind, plus the marquee and the in-flight
// connection line.
var (
	overlayNodeColor       = color.RGBA{R: 0x4e, G: 0x9a, B: 0xf5, A: 0xff}
	overlayPortColor       = color.RGBA{R: 0x3d, G: 0xd6, B: 0x8c, A: 0xff}
	overlayConnectionColor = color.RGBA{R: 0xf5, G: 0xa6, B: 0x23, A: 0xff}
	overlayAnnotationColor = color.RGBA{R: 0x9b, G: 0x7d, B: 0xd4, A: 0xff}
	overlayMarqueeColor    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x60}
	overlayDragLineColor   = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
)

// DrawOverlay paints interaction feedback on top of the application's own
// rendering: the marquee rectangle and the in-flight connection line always,
// and — when live visualization is on — the stored bounds of every index
// entry, so drags can be watched moving the index in real time.
func (e *Editor) DrawOverlay(screen *ebiten.Image) {
	if r, ok := e.Marquee(); ok {
		e.strokeGraphRect(screen, r, overlayMarqueeColor)
	}

	if from, head, to, ok := e.ConnectionDrag(); ok {
		start := e.portScreenAnchor(from)
		end := e.viewport.GraphToScreen(head)
		if to != nil {
			end = e.portScreenAnchor(*to)
		}
		vector.StrokeLine(screen,
			float32(start.X), float32(start.Y),
			float32(end.X), float32(end.Y),
			1, overlayDragLineColor, true)
	}

	if !e.debug {
		return
	}
	e.index.EachBounds(func(kind HitKind, bounds Rect) {
		var col color.RGBA
		switch kind {
		case HitNode:
			col = overlayNodeColor
		case HitPort:
			col = overlayPortColor
		case HitConnection:
			col = overlayConnectionColor
		default:
			col = overlayAnnotationColor
		}
		e.strokeGraphRect(screen, bounds, col)
	})
}

// strokeGraphRect outlines a graph-space rectangle on screen.
func (e *Editor) strokeGraphRect(screen *ebiten.Image, r Rect, col color.RGBA) {
	tl := e.viewport.GraphToScreen(Vec2{X: r.X, Y: r.Y})
	w := float32(r.Width * e.viewport.Zoom)
	h := float32(r.Height * e.viewport.Zoom)
	vector.StrokeRect(screen, float32(tl.X), float32(tl.Y), w, h, 1, col, false)
}

// portScreenAnchor returns the screen position of a port's anchor point,
// falling back to the node center when either id no longer resolves.
func (e *Editor) portScreenAnchor(addr PortAddress) Vec2 {
	n := e.graph.Node(addr.NodeID)
	if n == nil {
		return Vec2{}
	}
	return e.viewport.GraphToScreen(connectionAnchor(n, addr.PortID))
}
