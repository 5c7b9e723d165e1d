package trellis

// DirtyTracker sits between continuous drag mutations and the SpatialIndex.
// Outside a drag it applies geometry changes immediately. During a drag it
// collects dirty element ids instead, then Flush applies them as one batch
// when the drag ends — so twenty pixels of movement cost one index update,
// not twenty.
//
// Live-update mode (the debug overlay's "watch the index move" switch)
// keeps the tracker immediate even during drags, at per-frame update cost.
type DirtyTracker struct {
	graph *Graph
	index *SpatialIndex

	dragActive bool
	liveUpdate bool

	pendingNodes map[string]struct{}
	pendingConns map[string]struct{}
}

// NewDirtyTracker creates a tracker in the immediate state.
func NewDirtyTracker(graph *Graph, index *SpatialIndex) *DirtyTracker {
	return &DirtyTracker{
		graph:        graph,
		index:        index,
		pendingNodes: make(map[string]struct{}),
		pendingConns: make(map[string]struct{}),
	}
}

// Deferred reports whether MarkDirty currently queues instead of updating:
// a drag is active and live-update mode is off.
func (t *DirtyTracker) Deferred() bool {
	return t.dragActive && !t.liveUpdate
}

// LiveUpdate reports whether live-update mode is on.
func (t *DirtyTracker) LiveUpdate() bool {
	return t.liveUpdate
}

// SetLiveUpdate toggles live-update mode. Enabling it mid-drag flushes the
// pending sets immediately so the overlay never shows stale bounds;
// disabling it mid-drag only affects subsequent MarkDirty calls.
func (t *DirtyTracker) SetLiveUpdate(enabled bool) {
	t.liveUpdate = enabled
	if enabled {
		t.Flush()
	}
}

// BeginDrag enters the deferred state (unless live-update mode holds the
// tracker immediate). Called when a node, selection, or connection drag
// starts.
func (t *DirtyTracker) BeginDrag() {
	t.dragActive = true
}

// EndDrag flushes pending updates and returns to the immediate state.
// Called on drag end and on drag cancel — the index must never be left
// with bounds from an abandoned drag.
func (t *DirtyTracker) EndDrag() {
	t.dragActive = false
	t.Flush()
}

// MarkDirty records that a node's geometry changed. The node's attached
// connections are discovered through the graph's connection-by-node lookup
// and marked with it.
//
// Immediate state: the index is updated synchronously (node, ports, and
// attached connection segments), so a query issued right after this call
// sees current bounds. Deferred state: ids go into the pending sets and the
// index is untouched until Flush.
func (t *DirtyTracker) MarkDirty(nodeID string) {
	if t.Deferred() {
		t.pendingNodes[nodeID] = struct{}{}
		for _, connID := range t.graph.ConnectionsForNode(nodeID) {
			t.pendingConns[connID] = struct{}{}
		}
		return
	}

	t.index.Batch(func() {
		t.applyNode(nodeID)
	})
}

// MarkDirtyMany marks several nodes dirty. In the immediate state all
// updates share one batch scope, so observers get one notification.
func (t *DirtyTracker) MarkDirtyMany(nodeIDs []string) {
	if t.Deferred() {
		for _, id := range nodeIDs {
			t.MarkDirty(id)
		}
		return
	}
	t.index.Batch(func() {
		for _, id := range nodeIDs {
			t.applyNode(id)
		}
	})
}

// Flush applies every pending update inside one batch scope and clears the
// pending sets, emitting exactly one change notification. Ids that no
// longer resolve to live elements are skipped silently: deletion during a
// drag is a normal race in an interactive editor, not an error.
//
// Flush is idempotent — with nothing pending it does nothing — and safe to
// call synchronously whenever up-to-date bounds are required before the
// next query, without waiting for the drag-end path.
func (t *DirtyTracker) Flush() {
	if len(t.pendingNodes) == 0 && len(t.pendingConns) == 0 {
		return
	}
	t.index.Batch(func() {
		for id := range t.pendingNodes {
			if n := t.graph.Node(id); n != nil {
				t.index.Update(n)
			}
		}
		for id := range t.pendingConns {
			if c := t.graph.Connection(id); c != nil {
				t.index.RefreshConnection(c)
			}
		}
	})
	clear(t.pendingNodes)
	clear(t.pendingConns)
}

// PendingNodes returns the number of node ids awaiting flush.
func (t *DirtyTracker) PendingNodes() int {
	return len(t.pendingNodes)
}

// PendingConnections returns the number of connection ids awaiting flush.
func (t *DirtyTracker) PendingConnections() int {
	return len(t.pendingConns)
}

// applyNode updates one node and its attached connections in the index.
// Missing elements are skipped silently.
func (t *DirtyTracker) applyNode(nodeID string) {
	n := t.graph.Node(nodeID)
	if n == nil {
		return
	}
	t.index.Update(n)
	for _, connID := range t.graph.ConnectionsForNode(nodeID) {
		if c := t.graph.Connection(connID); c != nil {
			t.index.RefreshConnection(c)
		}
	}
}
