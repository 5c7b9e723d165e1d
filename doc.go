// Package trellis is the geometric core of a node-and-edge flow editor for
// [Ebitengine].
//
// Trellis provides the viewport coordinate transform, the spatial index and
// priority-ordered hit-testing that turn pointer positions into typed graph
// elements, and the dirty-tracking protocol that keeps the index consistent
// during high-frequency drag interactions — everything an interactive graph
// canvas needs short of drawing the graph itself.
//
// # Quick start
//
// Build a [Graph], wrap it in an [Editor], and drive the editor from your
// [ebiten.Game]:
//
//	graph := trellis.NewGraph()
//	node := graph.AddNode(trellis.Node{
//		Position: trellis.Vec2{X: 100, Y: 80},
//		Size:     trellis.Size{Width: 120, Height: 48},
//	})
//	editor := trellis.NewEditor(graph, trellis.DefaultEditorConfig())
//
//	type Game struct{ editor *trellis.Editor }
//
//	func (g *Game) Update() error        { g.editor.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { /* draw graph, then: */ g.editor.DrawOverlay(s) }
//
// The editor handles selection, node dragging, marquee selection,
// connection dragging with port snapping, panning, and zoom-at-cursor.
// Applications that only need the geometry can use [SpatialIndex],
// [DirtyTracker], and [Viewport] directly.
//
// # Coordinate spaces
//
// Node positions live in graph space, an infinite plane independent of the
// window. [Viewport] maps between graph space and screen pixels; it is an
// immutable value, so every pan or zoom tick produces a new Viewport.
//
// # Hit-testing
//
// [SpatialIndex.HitTest] resolves a graph-space point to the single element
// a user would expect to grab: ports win over the node they sit on, nodes
// win over connections, connections (tested segment-by-segment, then
// confirmed against the precise path) win over annotations, and anything
// else is the canvas. [SpatialIndex.QueryRect] backs marquee selection and
// returns only nodes fully contained in the rectangle.
//
// [Ebitengine]: https://ebitengine.org
package trellis
