package trellis

// entryKind tags a spatial entry with the kind of element it indexes.
type entryKind uint8

const (
	entryNode entryKind = iota
	entryPort
	entrySegment
	entryAnnotation
)

// spatialEntry is one record in the index: derived bounds plus the
// back-references needed to turn a geometric hit into a semantic answer.
// The authoritative element data stays in the Graph; the index owns only
// this derived geometry.
type spatialEntry struct {
	kind   entryKind
	bounds Rect
	zIndex int
	seq    uint64 // insertion sequence, breaks z ties by recency

	// Node and port entries.
	nodeID string
	shape  Shape // custom node outline; nil means plain rectangle
	// Port entries.
	portID   string
	isOutput bool
	// Segment entries.
	connectionID string
	segmentIndex int
	// Annotation entries.
	annotationID string
}

// SegmentsFunc computes the rectangle segments approximating a connection's
// rendered path. Returned rectangles are raw path bounds; the index expands
// each by its hit tolerance before storing.
type SegmentsFunc func(c *Connection, source, target *Node) []Rect

// PathHitFunc is the precise path test used to confirm a near-miss segment
// candidate: it reports whether the graph-space point actually lies on the
// rendered path, not merely inside a segment's bounding box.
type PathHitFunc func(c *Connection, source, target *Node, p Vec2) bool

// SpatialIndex is the mutable geometric database behind hit-testing and
// marquee selection. It holds one entry per node, per port, per connection
// segment, and per annotation, and answers point and rectangle queries in
// hit-priority order.
//
// The index never computes geometry itself: ports, shapes, and connection
// paths come from the resolver fields below, which must be configured
// before the corresponding elements are indexed. A nil required resolver
// is a setup-ordering bug in the host application and panics.
//
// Not safe for concurrent use. One owner (the Editor, or the application
// controller) mutates it; everything else only queries.
type SpatialIndex struct {
	graph *Graph

	// SnapDistance expands port bounds during hit tests so ports are easy
	// to grab even though they render small.
	SnapDistance float64
	// HitTolerance expands each connection segment's bounding box so thin
	// paths remain clickable.
	HitTolerance float64

	// PortSize resolves the hit size of a port without a per-port override.
	// Required before indexing any node that has such ports.
	PortSize func(n *Node, p *Port) Size
	// NodeShape returns a custom outline for a node, or nil for the plain
	// bounding rectangle. Optional.
	NodeShape func(n *Node) Shape
	// Segments computes a connection's segment rectangles. Required before
	// RebuildConnections or RefreshConnection.
	Segments SegmentsFunc
	// PathHit confirms a segment candidate against the precise path.
	// Required before a HitTest can return connection hits.
	PathHit PathHitFunc
	// RenderOrder returns the nodes back-to-front as actually painted, so
	// hit-testing agrees with what the user sees on top. Defaults to the
	// graph's ZIndex ordering.
	RenderOrder func() []*Node

	nodeEntries map[string]spatialEntry
	portEntries map[string][]spatialEntry
	connEntries map[string][]spatialEntry
	annEntries  map[string]spatialEntry
	nextSeq     uint64

	listeners  []changeListener
	nextListen uint32
	batchDepth int
	pending    bool
}

// NewSpatialIndex creates an empty index over the given graph with default
// snap distance and hit tolerance. Element ids are resolved against the
// graph at query time (connection endpoints, hit confirmation).
func NewSpatialIndex(graph *Graph) *SpatialIndex {
	idx := &SpatialIndex{
		graph:        graph,
		SnapDistance: 6,
		HitTolerance: 4,
		nodeEntries:  make(map[string]spatialEntry),
		portEntries:  make(map[string][]spatialEntry),
		connEntries:  make(map[string][]spatialEntry),
		annEntries:   make(map[string]spatialEntry),
	}
	idx.RenderOrder = graph.RenderOrder
	return idx
}

// --- Change notification ---

type changeListener struct {
	id uint32
	fn func()
}

// ListenerHandle allows removing a registered change listener.
type ListenerHandle struct {
	id  uint32
	idx *SpatialIndex
}

// Remove unregisters the listener so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h ListenerHandle) Remove() {
	if h.idx == nil {
		return
	}
	s := h.idx.listeners
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = changeListener{}
			h.idx.listeners = s[:len(s)-1]
			return
		}
	}
}

// OnChanged registers a listener fired whenever indexed geometry changed:
// once per mutating call outside a batch, exactly once per Batch scope, and
// on every explicit NotifyChanged.
func (s *SpatialIndex) OnChanged(fn func()) ListenerHandle {
	s.nextListen++
	s.listeners = append(s.listeners, changeListener{id: s.nextListen, fn: fn})
	return ListenerHandle{id: s.nextListen, idx: s}
}

// NotifyChanged tells observers (debug overlays, renderers) to re-read the
// index. Idempotent with respect to state: it carries no payload, so firing
// it after a silent mutation sequence is always safe. Inside a Batch it is
// coalesced into the batch's single notification.
func (s *SpatialIndex) NotifyChanged() {
	if s.batchDepth > 0 {
		s.pending = true
		return
	}
	for _, l := range s.listeners {
		l.fn()
	}
}

// Batch executes fn while suppressing change notifications, then emits
// exactly one notification — so a layout pass touching every node costs one
// downstream re-render, not N. Inside fn the index is updated synchronously;
// only the outward notification is deferred. Nested batches notify once at
// the end of the outermost scope.
func (s *SpatialIndex) Batch(fn func()) {
	s.batchDepth++
	defer func() {
		s.batchDepth--
		if s.batchDepth == 0 {
			s.pending = false
			for _, l := range s.listeners {
				l.fn()
			}
		}
	}()
	fn()
}

// --- Rebuild (bulk replace) ---

// RebuildNodes replaces every node and port entry from the given nodes.
// Used after bulk graph load: one build beats thousands of incremental
// inserts.
func (s *SpatialIndex) RebuildNodes(nodes []*Node) {
	s.nodeEntries = make(map[string]spatialEntry, len(nodes))
	s.portEntries = make(map[string][]spatialEntry, len(nodes))
	for _, n := range nodes {
		s.indexNode(n)
	}
	s.NotifyChanged()
}

// RebuildConnections replaces every segment entry, computing segments with
// the configured Segments resolver. Connections whose source or target node
// is missing from the graph are skipped and stay invisible to hit-testing
// until both endpoints exist.
func (s *SpatialIndex) RebuildConnections(conns []*Connection) {
	s.mustSegments()
	s.connEntries = make(map[string][]spatialEntry, len(conns))
	for _, c := range conns {
		src, dst := s.endpoints(c)
		if src == nil || dst == nil {
			continue
		}
		s.storeSegments(c, s.Segments(c, src, dst))
	}
	s.NotifyChanged()
}

// RebuildConnectionsWith replaces every segment entry using caller-computed
// segments, avoiding recomputation when the caller already has them (e.g.
// from the same pass that produced render geometry). segmentsFor may return
// nil to skip a connection.
func (s *SpatialIndex) RebuildConnectionsWith(conns []*Connection, segmentsFor func(*Connection) []Rect) {
	s.connEntries = make(map[string][]spatialEntry, len(conns))
	for _, c := range conns {
		if segs := segmentsFor(c); segs != nil {
			s.storeSegments(c, segs)
		}
	}
	s.NotifyChanged()
}

// RebuildAnnotations replaces every annotation entry.
func (s *SpatialIndex) RebuildAnnotations(anns []*Annotation) {
	s.annEntries = make(map[string]spatialEntry, len(anns))
	for _, a := range anns {
		s.indexAnnotation(a)
	}
	s.NotifyChanged()
}

// --- Incremental update ---

// Update recomputes the entries of one node, including its ports (ports are
// positioned relative to the node, so a node move moves them all).
func (s *SpatialIndex) Update(n *Node) {
	delete(s.nodeEntries, n.ID)
	delete(s.portEntries, n.ID)
	s.indexNode(n)
	s.NotifyChanged()
}

// UpdateConnection replaces a connection's segment set with caller-computed
// segments.
func (s *SpatialIndex) UpdateConnection(c *Connection, segments []Rect) {
	delete(s.connEntries, c.ID)
	s.storeSegments(c, segments)
	s.NotifyChanged()
}

// RefreshConnection recomputes a connection's segments via the configured
// Segments resolver. If either endpoint is missing the connection's entries
// are removed rather than left stale.
func (s *SpatialIndex) RefreshConnection(c *Connection) {
	s.mustSegments()
	src, dst := s.endpoints(c)
	if src == nil || dst == nil {
		delete(s.connEntries, c.ID)
		s.NotifyChanged()
		return
	}
	s.UpdateConnection(c, s.Segments(c, src, dst))
}

// UpdateAnnotation recomputes one annotation's entry.
func (s *SpatialIndex) UpdateAnnotation(a *Annotation) {
	delete(s.annEntries, a.ID)
	s.indexAnnotation(a)
	s.NotifyChanged()
}

// RemoveConnection deletes a connection's segment entries.
func (s *SpatialIndex) RemoveConnection(id string) {
	if _, ok := s.connEntries[id]; !ok {
		return
	}
	delete(s.connEntries, id)
	s.NotifyChanged()
}

// Remove deletes whatever entries the given element id owns: a node's entry
// plus its port entries, a connection's segments, or an annotation's entry.
// Unknown ids are a no-op.
func (s *SpatialIndex) Remove(id string) {
	changed := false
	if _, ok := s.nodeEntries[id]; ok {
		delete(s.nodeEntries, id)
		delete(s.portEntries, id)
		changed = true
	}
	if _, ok := s.connEntries[id]; ok {
		delete(s.connEntries, id)
		changed = true
	}
	if _, ok := s.annEntries[id]; ok {
		delete(s.annEntries, id)
		changed = true
	}
	if changed {
		s.NotifyChanged()
	}
}

// Clear drops every entry. Used when the whole graph is reset.
func (s *SpatialIndex) Clear() {
	s.nodeEntries = make(map[string]spatialEntry)
	s.portEntries = make(map[string][]spatialEntry)
	s.connEntries = make(map[string][]spatialEntry)
	s.annEntries = make(map[string]spatialEntry)
	s.NotifyChanged()
}

// --- Entry construction ---

func (s *SpatialIndex) indexNode(n *Node) {
	entry := spatialEntry{
		kind:   entryNode,
		bounds: n.Bounds(),
		zIndex: n.ZIndex,
		seq:    s.seq(),
		nodeID: n.ID,
	}
	if s.NodeShape != nil {
		if shape := s.NodeShape(n); shape != nil {
			entry.shape = shape
			entry.bounds = shape.Bounds()
		}
	}
	if validBounds(entry.bounds) {
		s.nodeEntries[n.ID] = entry
	}

	if len(n.Ports) == 0 {
		return
	}
	ports := make([]spatialEntry, 0, len(n.Ports))
	for i := range n.Ports {
		p := &n.Ports[i]
		bounds := s.portBounds(n, p)
		if !validBounds(bounds) {
			continue
		}
		ports = append(ports, spatialEntry{
			kind:     entryPort,
			bounds:   bounds,
			zIndex:   n.ZIndex,
			seq:      s.seq(),
			nodeID:   n.ID,
			portID:   p.ID,
			isOutput: p.Output,
		})
	}
	if len(ports) > 0 {
		s.portEntries[n.ID] = ports
	}
}

// portBounds centers the port's hit rectangle on its anchor point.
func (s *SpatialIndex) portBounds(n *Node, p *Port) Rect {
	var size Size
	switch {
	case p.Size != nil:
		size = *p.Size
	case s.PortSize != nil:
		size = s.PortSize(n, p)
	default:
		panic("trellis: port size resolver not configured")
	}
	anchor := n.PortAnchor(p)
	return Rect{
		X:      anchor.X - size.Width/2,
		Y:      anchor.Y - size.Height/2,
		Width:  size.Width,
		Height: size.Height,
	}
}

// storeSegments expands each raw segment by the hit tolerance and stores
// the valid ones. A connection whose segments are all degenerate ends up
// with no entries at all.
func (s *SpatialIndex) storeSegments(c *Connection, segments []Rect) {
	entries := make([]spatialEntry, 0, len(segments))
	for i, seg := range segments {
		expanded := seg.Expand(s.HitTolerance)
		if !validBounds(expanded) {
			continue
		}
		entries = append(entries, spatialEntry{
			kind:         entrySegment,
			bounds:       expanded,
			zIndex:       c.ZIndex,
			seq:          s.seq(),
			connectionID: c.ID,
			segmentIndex: i,
		})
	}
	if len(entries) > 0 {
		s.connEntries[c.ID] = entries
	}
}

func (s *SpatialIndex) indexAnnotation(a *Annotation) {
	if !validBounds(a.Bounds) {
		return
	}
	s.annEntries[a.ID] = spatialEntry{
		kind:         entryAnnotation,
		bounds:       a.Bounds,
		zIndex:       a.ZIndex,
		seq:          s.seq(),
		annotationID: a.ID,
	}
}

func (s *SpatialIndex) seq() uint64 {
	s.nextSeq++
	return s.nextSeq
}

func (s *SpatialIndex) endpoints(c *Connection) (src, dst *Node) {
	return s.graph.Node(c.SourceNode), s.graph.Node(c.TargetNode)
}

func (s *SpatialIndex) mustSegments() {
	if s.Segments == nil {
		panic("trellis: connection segments resolver not configured")
	}
}

// --- Introspection (debug overlay) ---

// EntryCount returns the total number of stored entries across all kinds.
func (s *SpatialIndex) EntryCount() int {
	count := len(s.nodeEntries) + len(s.annEntries)
	for _, ports := range s.portEntries {
		count += len(ports)
	}
	for _, segs := range s.connEntries {
		count += len(segs)
	}
	return count
}

// EachBounds calls fn with the kind and stored bounds of every entry.
// Port bounds are reported snap-expanded and segment bounds
// tolerance-expanded, exactly as queries see them. Iteration order is
// unspecified. Used by the debug overlay.
func (s *SpatialIndex) EachBounds(fn func(kind HitKind, bounds Rect)) {
	for _, e := range s.nodeEntries {
		fn(HitNode, e.bounds)
	}
	for _, ports := range s.portEntries {
		for _, e := range ports {
			fn(HitPort, e.bounds.Expand(s.SnapDistance))
		}
	}
	for _, segs := range s.connEntries {
		for _, e := range segs {
			fn(HitConnection, e.bounds)
		}
	}
	for _, e := range s.annEntries {
		fn(HitAnnotation, e.bounds)
	}
}
