package trellis

import (
	"math"
	"sort"
)

// EditorConfig holds the interaction tuning knobs. Zero values are replaced
// by DefaultEditorConfig values in NewEditor.
type EditorConfig struct {
	// MinZoom and MaxZoom clamp every zoom change before it reaches the
	// viewport (the viewport itself never clamps).
	MinZoom, MaxZoom float64
	// ZoomStep is the zoom multiplier applied per scroll-wheel notch.
	ZoomStep float64
	// PortSize is the hit size of ports without a per-port override.
	PortSize Size
	// SnapDistance expands port bounds for hit tests and connection-drag
	// snapping, in graph units.
	SnapDistance float64
	// HitTolerance widens connection paths for hit tests, in graph units.
	HitTolerance float64
	// DragDeadZone is the minimum pointer movement in screen pixels before
	// a press turns into a drag.
	DragDeadZone float64
}

// DefaultEditorConfig returns the standard interaction tuning.
func DefaultEditorConfig() EditorConfig {
	return EditorConfig{
		MinZoom:      0.1,
		MaxZoom:      8.0,
		ZoomStep:     1.1,
		PortSize:     Size{Width: 10, Height: 10},
		SnapDistance: 6,
		HitTolerance: 4,
		DragDeadZone: 4,
	}
}

// dragMode identifies what an active drag is moving.
type dragMode uint8

const (
	dragNone       dragMode = iota
	dragNodes               // moving the selected nodes
	dragMarquee             // rubber-band selection rectangle
	dragConnection          // drawing a new connection from a port
	dragPan                 // panning the viewport
)

// pointerState tracks the single active pointer across frames.
type pointerState struct {
	down     bool
	button   MouseButton
	start    Vec2 // screen space, at press
	last     Vec2 // screen space, previous frame
	dragging bool
	mode     dragMode
	hit      HitResult // hit result at press, in graph space
}

// Editor is the interaction controller: it owns the graph, the spatial
// index, the dirty tracker, and the viewport, and turns pointer input into
// selection, node drags, marquee selection, connection drags, panning, and
// zooming. Only the Editor (and the DirtyTracker it delegates to) mutates
// the index; renderers and input handlers just query it.
type Editor struct {
	graph   *Graph
	index   *SpatialIndex
	tracker *DirtyTracker
	router  *Router
	config  EditorConfig

	viewport   Viewport
	screenSize Size
	anim       *viewportAnim

	selection     []string // selected node ids, selection order
	selectedConn  string   // selected connection id, "" if none
	pointer       pointerState
	dragOrigins   map[string]Vec2 // node positions at drag start, for cancel
	marqueeAnchor Vec2            // graph space
	marqueeHead   Vec2            // graph space
	connFrom      PortAddress     // source port of an active connection drag
	connTo        *PortAddress    // current snap target, nil while over canvas
	connHead      Vec2            // free end of the connection drag, graph space

	injectQueue []syntheticPointerEvent

	// OnConnect, when non-nil, replaces the default connect behavior
	// (adding a straight connection to the graph) at the end of a
	// connection drag that lands on a compatible port.
	OnConnect func(from, to PortAddress)

	debug bool
	stats interactionStats
}

// NewEditor creates an editor over the given graph, builds the spatial
// index from the graph's current contents, and wires the built-in router
// into the index's resolver slots.
func NewEditor(graph *Graph, cfg EditorConfig) *Editor {
	def := DefaultEditorConfig()
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = def.MinZoom
	}
	if cfg.MaxZoom <= 0 {
		cfg.MaxZoom = def.MaxZoom
	}
	if cfg.ZoomStep <= 1 {
		cfg.ZoomStep = def.ZoomStep
	}
	if cfg.PortSize.Width <= 0 || cfg.PortSize.Height <= 0 {
		cfg.PortSize = def.PortSize
	}
	if cfg.SnapDistance <= 0 {
		cfg.SnapDistance = def.SnapDistance
	}
	if cfg.HitTolerance <= 0 {
		cfg.HitTolerance = def.HitTolerance
	}
	if cfg.DragDeadZone <= 0 {
		cfg.DragDeadZone = def.DragDeadZone
	}

	router := NewRouter()
	router.Tolerance = cfg.HitTolerance

	index := NewSpatialIndex(graph)
	index.SnapDistance = cfg.SnapDistance
	index.HitTolerance = cfg.HitTolerance
	index.PortSize = func(*Node, *Port) Size { return cfg.PortSize }
	index.Segments = router.Segments
	index.PathHit = router.PathHit

	e := &Editor{
		graph:       graph,
		index:       index,
		tracker:     NewDirtyTracker(graph, index),
		router:      router,
		config:      cfg,
		viewport:    NewViewport(),
		dragOrigins: make(map[string]Vec2),
	}
	e.RebuildIndex()
	return e
}

// Graph returns the graph the editor operates on.
func (e *Editor) Graph() *Graph { return e.graph }

// Index returns the spatial index. Callers may query it freely but must
// route mutations through the editor or its tracker.
func (e *Editor) Index() *SpatialIndex { return e.index }

// Tracker returns the dirty tracker.
func (e *Editor) Tracker() *DirtyTracker { return e.tracker }

// Router returns the built-in connection router.
func (e *Editor) Router() *Router { return e.router }

// Viewport returns the current viewport value.
func (e *Editor) Viewport() Viewport { return e.viewport }

// SetViewport replaces the viewport. The zoom is clamped to the configured
// range.
func (e *Editor) SetViewport(v Viewport) {
	v.Zoom = e.clampZoom(v.Zoom)
	e.viewport = v
}

// SetScreenSize records the rendering surface size used for visibility
// queries and pan-to-center math.
func (e *Editor) SetScreenSize(s Size) { e.screenSize = s }

// RebuildIndex rebuilds every index subset from the graph's current
// contents. Call after bulk graph loads; incremental edits through the
// editor keep the index current on their own.
func (e *Editor) RebuildIndex() {
	e.index.Batch(func() {
		e.index.RebuildNodes(e.graph.Nodes())
		e.index.RebuildConnections(e.graph.Connections())
		e.index.RebuildAnnotations(e.graph.Annotations())
	})
}

// HitTestScreen hit-tests a screen-space point.
func (e *Editor) HitTestScreen(screen Vec2) HitResult {
	return e.index.HitTest(e.viewport.ScreenToGraph(screen))
}

// --- Selection ---

// Selection returns the selected node ids in selection order. The returned
// slice is owned by the caller.
func (e *Editor) Selection() []string {
	out := make([]string, len(e.selection))
	copy(out, e.selection)
	return out
}

// SelectedConnection returns the selected connection id, or "".
func (e *Editor) SelectedConnection() string { return e.selectedConn }

// IsSelected reports whether the node is selected.
func (e *Editor) IsSelected(nodeID string) bool {
	for _, id := range e.selection {
		if id == nodeID {
			return true
		}
	}
	return false
}

// Select replaces the selection with the given node ids.
func (e *Editor) Select(nodeIDs ...string) {
	e.selection = e.selection[:0]
	e.selection = append(e.selection, nodeIDs...)
	e.selectedConn = ""
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() {
	e.selection = e.selection[:0]
	e.selectedConn = ""
}

func (e *Editor) toggleSelected(nodeID string) {
	for i, id := range e.selection {
		if id == nodeID {
			e.selection = append(e.selection[:i], e.selection[i+1:]...)
			return
		}
	}
	e.selection = append(e.selection, nodeID)
}

// DeleteSelection removes the selected nodes (with their attached
// connections) and the selected connection from both graph and index.
func (e *Editor) DeleteSelection() {
	if len(e.selection) == 0 && e.selectedConn == "" {
		return
	}
	e.index.Batch(func() {
		for _, id := range e.selection {
			for _, connID := range e.graph.ConnectionsForNode(id) {
				e.index.RemoveConnection(connID)
			}
			e.graph.RemoveNode(id)
			e.index.Remove(id)
		}
		if e.selectedConn != "" {
			e.graph.RemoveConnection(e.selectedConn)
			e.index.RemoveConnection(e.selectedConn)
		}
	})
	e.ClearSelection()
}

// --- Node movement ---

// MoveSelection shifts every selected node by the graph-space delta and
// marks them dirty. During a drag the index stays untouched until the drag
// ends; outside a drag the index updates synchronously.
func (e *Editor) MoveSelection(delta Vec2) {
	for _, id := range e.selection {
		if n := e.graph.Node(id); n != nil {
			n.Position = n.Position.Add(delta)
		}
	}
	e.tracker.MarkDirtyMany(e.selection)
}

// MoveNode repositions one node and marks it dirty. When up-to-date bounds
// are required immediately afterwards (hit-testing right after a
// programmatic move), follow with Tracker().Flush().
func (e *Editor) MoveNode(nodeID string, position Vec2) {
	n := e.graph.Node(nodeID)
	if n == nil {
		return
	}
	n.Position = position
	e.tracker.MarkDirty(nodeID)
}

// --- Viewport control ---

// PanBy shifts the viewport by a screen-space delta.
func (e *Editor) PanBy(screenDelta Vec2) {
	e.viewport = e.viewport.WithPan(e.viewport.X+screenDelta.X, e.viewport.Y+screenDelta.Y)
}

// ZoomAt multiplies the zoom by factor, clamped to the configured range,
// keeping the graph point under the given screen point fixed.
func (e *Editor) ZoomAt(factor float64, screen Vec2) {
	target := e.clampZoom(e.viewport.Zoom * factor)
	e.viewport = e.viewport.ZoomAt(target, screen)
}

// Scroll applies wheel input: one notch of dy zooms by ZoomStep toward the
// cursor.
func (e *Editor) Scroll(dy float64, screen Vec2) {
	if dy == 0 {
		return
	}
	e.ZoomAt(math.Pow(e.config.ZoomStep, dy), screen)
}

func (e *Editor) clampZoom(z float64) float64 {
	return math.Max(e.config.MinZoom, math.Min(z, e.config.MaxZoom))
}

// --- Live visualization ---

// SetLiveVisualization toggles the debug overlay's live mode: the tracker
// updates the index immediately even mid-drag, per-interaction stats go to
// stderr, and DrawOverlay paints index bounds. Enabling it mid-drag flushes
// pending updates so the overlay starts from current bounds.
func (e *Editor) SetLiveVisualization(enabled bool) {
	e.debug = enabled
	e.tracker.SetLiveUpdate(enabled)
}

// LiveVisualization reports whether live visualization is on.
func (e *Editor) LiveVisualization() bool { return e.debug }

// --- Per-frame work ---

// Tick advances viewport animation and consumes one injected pointer event.
// It is the ebiten-free part of Update, so headless tests can drive the
// editor frame by frame. Returns true if an injected event was consumed
// (real pointer input should then be skipped this frame).
func (e *Editor) Tick(dt float32) bool {
	if e.anim != nil {
		var done bool
		e.viewport, done = e.anim.update(dt, e.viewport)
		if done {
			e.anim = nil
		}
	}
	return e.processInjected()
}

// --- Pointer state machine ---

// ProcessPointer runs one frame of the pointer state machine with the
// pointer at the given screen position. pressed covers any tracked button;
// button is only honored at press time and is sticky for the rest of the
// interaction.
func (e *Editor) ProcessPointer(screen Vec2, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &e.pointer

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.start = screen
		ps.last = screen
		ps.dragging = false
		ps.mode = dragNone
		ps.hit = e.HitTestScreen(screen)
		e.pressAt(ps.hit, button, mods)

	case !pressed && ps.down:
		if ps.dragging {
			e.finishDrag(screen)
		} else {
			e.clickAt(ps.hit, ps.button, mods)
		}
		ps.down = false
		ps.dragging = false
		ps.mode = dragNone

	case pressed && ps.down:
		if screen != ps.last {
			if !ps.dragging {
				dx := screen.X - ps.start.X
				dy := screen.Y - ps.start.Y
				if math.Sqrt(dx*dx+dy*dy) > e.config.DragDeadZone {
					ps.dragging = true
					e.startDrag(ps.hit, ps.button)
				}
			}
			if ps.dragging {
				e.continueDrag(screen, ps.last)
			}
			ps.last = screen
		}
	}

	if !pressed {
		ps.last = screen
	}
}

// pressAt updates the selection at press time so the drag that may follow
// moves what the user just grabbed.
func (e *Editor) pressAt(hit HitResult, button MouseButton, mods KeyModifiers) {
	if button != MouseButtonLeft {
		return
	}
	switch hit.Kind {
	case HitNode:
		if mods&ModShift != 0 {
			e.toggleSelected(hit.NodeID)
		} else if !e.IsSelected(hit.NodeID) {
			e.Select(hit.NodeID)
		}
	case HitConnection:
		e.selection = e.selection[:0]
		e.selectedConn = hit.ConnectionID
	case HitPort, HitAnnotation:
		// Selection is decided at release (click) or drag start.
	case HitNone:
		if mods&ModShift == 0 {
			e.ClearSelection()
		}
	}
}

// clickAt handles a press-release with no drag in between.
func (e *Editor) clickAt(hit HitResult, button MouseButton, mods KeyModifiers) {
	if button != MouseButtonLeft {
		return
	}
	if hit.Kind == HitPort && mods&ModShift == 0 {
		// Clicking a port selects its node.
		e.Select(hit.NodeID)
	}
}

// startDrag decides what the drag moves, based on the press hit and button.
func (e *Editor) startDrag(hit HitResult, button MouseButton) {
	if button == MouseButtonMiddle || button == MouseButtonRight {
		e.pointer.mode = dragPan
		return
	}

	switch hit.Kind {
	case HitPort:
		e.pointer.mode = dragConnection
		e.connFrom = PortAddress{NodeID: hit.NodeID, PortID: hit.PortID, IsOutput: hit.IsOutput}
		e.connTo = nil
		e.connHead = hit.Position
		e.tracker.BeginDrag()
	case HitNode:
		e.pointer.mode = dragNodes
		e.rememberDragOrigins()
		e.tracker.BeginDrag()
		e.statDragStart()
	case HitNone, HitAnnotation:
		e.pointer.mode = dragMarquee
		e.marqueeAnchor = hit.Position
		e.marqueeHead = hit.Position
	case HitConnection:
		e.pointer.mode = dragPan
	}
}

// continueDrag applies one frame of pointer movement to the active drag.
func (e *Editor) continueDrag(screen, prev Vec2) {
	screenDelta := screen.Sub(prev)

	switch e.pointer.mode {
	case dragNodes:
		e.MoveSelection(e.viewport.ScreenToGraphDelta(screenDelta))
		e.statDragMove()
	case dragMarquee:
		e.marqueeHead = e.viewport.ScreenToGraph(screen)
	case dragConnection:
		e.connHead = e.viewport.ScreenToGraph(screen)
		if addr, ok := e.index.HitTestPort(e.connHead); ok && e.validConnectTarget(addr) {
			e.connTo = &addr
		} else {
			e.connTo = nil
		}
	case dragPan:
		e.PanBy(screenDelta)
	}
}

// finishDrag completes the active drag at the release position.
func (e *Editor) finishDrag(screen Vec2) {
	switch e.pointer.mode {
	case dragNodes:
		e.statDragEnd()
		e.tracker.EndDrag()
	case dragMarquee:
		e.marqueeHead = e.viewport.ScreenToGraph(screen)
		ids := e.index.QueryRect(RectAround(e.marqueeAnchor, e.marqueeHead))
		sort.Strings(ids)
		e.Select(ids...)
	case dragConnection:
		e.tracker.EndDrag()
		if e.connTo != nil {
			e.connect(e.connFrom, *e.connTo)
		}
		e.connTo = nil
	}
}

// CancelDrag aborts the active drag: node positions roll back to their
// pre-drag values and the tracker flushes, so the index never keeps bounds
// from an abandoned drag. Bound to Escape in the input driver.
func (e *Editor) CancelDrag() {
	if !e.pointer.down {
		return
	}
	if e.pointer.mode == dragNodes {
		for id, pos := range e.dragOrigins {
			if n := e.graph.Node(id); n != nil {
				n.Position = pos
			}
		}
		e.tracker.MarkDirtyMany(e.selection)
	}
	e.tracker.EndDrag()
	e.connTo = nil
	e.pointer.down = false
	e.pointer.dragging = false
	e.pointer.mode = dragNone
}

// validConnectTarget reports whether a connection drag may land on the
// given port: opposite direction, different node.
func (e *Editor) validConnectTarget(addr PortAddress) bool {
	return addr.NodeID != e.connFrom.NodeID && addr.IsOutput != e.connFrom.IsOutput
}

// connect finishes a connection drag. from/to are normalized so the output
// port is always the source.
func (e *Editor) connect(from, to PortAddress) {
	if !from.IsOutput {
		from, to = to, from
	}
	if e.OnConnect != nil {
		e.OnConnect(from, to)
		return
	}
	c := e.graph.AddConnection(Connection{
		SourceNode: from.NodeID,
		SourcePort: from.PortID,
		TargetNode: to.NodeID,
		TargetPort: to.PortID,
	})
	e.index.RefreshConnection(c)
}

// Marquee returns the current marquee rectangle in graph space and whether
// a marquee drag is active. Renderers draw it; selection happens on
// release.
func (e *Editor) Marquee() (Rect, bool) {
	if !e.pointer.dragging || e.pointer.mode != dragMarquee {
		return Rect{}, false
	}
	return RectAround(e.marqueeAnchor, e.marqueeHead), true
}

// ConnectionDrag returns the active connection drag's source port, free
// end (graph space), and current snap target (nil while over canvas).
// ok is false when no connection drag is active.
func (e *Editor) ConnectionDrag() (from PortAddress, head Vec2, to *PortAddress, ok bool) {
	if !e.pointer.dragging || e.pointer.mode != dragConnection {
		return PortAddress{}, Vec2{}, nil, false
	}
	return e.connFrom, e.connHead, e.connTo, true
}

// rememberDragOrigins snapshots the selected nodes' positions for CancelDrag.
func (e *Editor) rememberDragOrigins() {
	clear(e.dragOrigins)
	for _, id := range e.selection {
		if n := e.graph.Node(id); n != nil {
			e.dragOrigins[id] = n.Position
		}
	}
}
