package trellis

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// viewportAnim holds active pan/zoom tweens for the viewport.
type viewportAnim struct {
	tweenX    *gween.Tween
	tweenY    *gween.Tween
	tweenZoom *gween.Tween
	doneX     bool
	doneY     bool
	doneZoom  bool
	anchor    Vec2 // screen point kept fixed while zoom animates
	// plainZoom sets the zoom directly instead of anchoring it on a screen
	// point. Used when pan tweens already control the offset, so the two
	// do not fight over X and Y.
	plainZoom bool
}

// update advances the tweens by dt and applies them to v. done is true once
// every active tween has finished.
func (a *viewportAnim) update(dt float32, v Viewport) (Viewport, bool) {
	if a.tweenX != nil && !a.doneX {
		val, done := a.tweenX.Update(dt)
		v.X = float64(val)
		a.doneX = done
	}
	if a.tweenY != nil && !a.doneY {
		val, done := a.tweenY.Update(dt)
		v.Y = float64(val)
		a.doneY = done
	}
	if a.tweenZoom != nil && !a.doneZoom {
		val, done := a.tweenZoom.Update(dt)
		if a.plainZoom {
			v.Zoom = float64(val)
		} else {
			v = v.ZoomAt(float64(val), a.anchor)
		}
		a.doneZoom = done
	}
	done := (a.tweenX == nil || a.doneX) &&
		(a.tweenY == nil || a.doneY) &&
		(a.tweenZoom == nil || a.doneZoom)
	return v, done
}

// PanTo animates the viewport over duration seconds so the given graph
// point ends up centered on screen. Requires SetScreenSize to have been
// called.
func (e *Editor) PanTo(graphPoint Vec2, duration float32, easeFn ease.TweenFunc) {
	targetX := e.screenSize.Width/2 - graphPoint.X*e.viewport.Zoom
	targetY := e.screenSize.Height/2 - graphPoint.Y*e.viewport.Zoom
	e.anim = &viewportAnim{
		tweenX: gween.New(float32(e.viewport.X), float32(targetX), duration, easeFn),
		tweenY: gween.New(float32(e.viewport.Y), float32(targetY), duration, easeFn),
	}
}

// ZoomTo animates the zoom factor to the given value (clamped to the
// configured range) over duration seconds, keeping the screen center fixed.
func (e *Editor) ZoomTo(zoom float64, duration float32, easeFn ease.TweenFunc) {
	target := e.clampZoom(zoom)
	e.anim = &viewportAnim{
		tweenZoom: gween.New(float32(e.viewport.Zoom), float32(target), duration, easeFn),
		anchor:    Vec2{X: e.screenSize.Width / 2, Y: e.screenSize.Height / 2},
	}
}

// FitToContent pans and zooms so every node is visible with the given
// margin (screen pixels), animated over duration seconds.
func (e *Editor) FitToContent(margin float64, duration float32, easeFn ease.TweenFunc) {
	nodes := e.graph.Nodes()
	if len(nodes) == 0 || e.screenSize.Width <= 0 || e.screenSize.Height <= 0 {
		return
	}
	bounds := nodes[0].Bounds()
	for _, n := range nodes[1:] {
		b := n.Bounds()
		bounds = RectAround(
			Vec2{X: minf(bounds.X, b.X), Y: minf(bounds.Y, b.Y)},
			Vec2{
				X: maxf(bounds.X+bounds.Width, b.X+b.Width),
				Y: maxf(bounds.Y+bounds.Height, b.Y+b.Height),
			},
		)
	}
	zoomX := (e.screenSize.Width - 2*margin) / bounds.Width
	zoomY := (e.screenSize.Height - 2*margin) / bounds.Height
	target := e.clampZoom(minf(zoomX, zoomY))

	center := bounds.Center()
	e.anim = &viewportAnim{
		tweenX:    gween.New(float32(e.viewport.X), float32(e.screenSize.Width/2-center.X*target), duration, easeFn),
		tweenY:    gween.New(float32(e.viewport.Y), float32(e.screenSize.Height/2-center.Y*target), duration, easeFn),
		tweenZoom: gween.New(float32(e.viewport.Zoom), float32(target), duration, easeFn),
		plainZoom: true,
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
