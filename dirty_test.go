package trellis

import "testing"

func newTestTracker() (*Graph, *SpatialIndex, *DirtyTracker) {
	g := twoNodeGraph()
	idx := newTestIndex(g)
	rebuildAll(idx, g)
	return g, idx, NewDirtyTracker(g, idx)
}

func TestMarkDirtyImmediate(t *testing.T) {
	g, idx, tracker := newTestTracker()

	g.Node("a").Position = Vec2{X: 1000, Y: 0}
	tracker.MarkDirty("a")

	// Outside a drag the update is synchronous: node, ports, and attached
	// connection segments all reflect the new position right away.
	if res := idx.HitTest(Vec2{X: 1050, Y: 25}); res.Kind != HitNode || res.NodeID != "a" {
		t.Errorf("node at new position = %+v, want node a", res)
	}
	if res := idx.HitTest(Vec2{X: 1100, Y: 25}); res.Kind != HitPort {
		t.Errorf("port at new position = %v, want port", res.Kind)
	}
	// Connection re-routed from the new source anchor (1100,25) to b (300,25).
	if res := idx.HitTest(Vec2{X: 700, Y: 25}); res.Kind != HitConnection {
		t.Errorf("re-routed connection = %v, want connection", res.Kind)
	}
	if tracker.PendingNodes() != 0 || tracker.PendingConnections() != 0 {
		t.Errorf("immediate mark left pending work: %d nodes, %d connections",
			tracker.PendingNodes(), tracker.PendingConnections())
	}
}

func TestDraggedNodeDeferredUntilFlush(t *testing.T) {
	g, idx, tracker := newTestTracker()

	tracker.BeginDrag()
	if !tracker.Deferred() {
		t.Fatal("tracker not deferred after BeginDrag")
	}

	// Twenty incremental moves of (10, 10) each, as a drag produces.
	a := g.Node("a")
	for i := 0; i < 20; i++ {
		a.Position = a.Position.Add(Vec2{X: 10, Y: 10})
		tracker.MarkDirty("a")
	}

	// The index still answers with the pre-drag bounds.
	if res := idx.HitTest(Vec2{X: 50, Y: 25}); res.Kind != HitNode || res.NodeID != "a" {
		t.Errorf("pre-flush query at old bounds = %+v, want node a", res)
	}
	if res := idx.HitTest(Vec2{X: 250, Y: 225}); res.Kind != HitNone {
		t.Errorf("pre-flush query at new bounds = %+v, want none", res)
	}
	// Pending sets are deduplicated: one node, one attached connection.
	if tracker.PendingNodes() != 1 || tracker.PendingConnections() != 1 {
		t.Errorf("pending = %d nodes, %d connections, want 1 and 1",
			tracker.PendingNodes(), tracker.PendingConnections())
	}

	tracker.EndDrag()

	// One flush later the node sits at the accumulated (200, 200) offset.
	if res := idx.HitTest(Vec2{X: 250, Y: 225}); res.Kind != HitNode || res.NodeID != "a" {
		t.Errorf("post-flush query = %+v, want node a", res)
	}
	if res := idx.HitTest(Vec2{X: 50, Y: 25}); res.Kind != HitNone {
		t.Errorf("old bounds still hittable after flush: %+v", res)
	}
	if tracker.Deferred() {
		t.Error("tracker still deferred after EndDrag")
	}
}

func TestFlushNotifiesExactlyOnce(t *testing.T) {
	g, idx, tracker := newTestTracker()

	notifications := 0
	idx.OnChanged(func() { notifications++ })

	tracker.BeginDrag()
	for i := 0; i < 5; i++ {
		g.Node("a").Position = g.Node("a").Position.Add(Vec2{X: 1, Y: 0})
		tracker.MarkDirty("a")
	}
	if notifications != 0 {
		t.Fatalf("deferred marks notified %d times, want 0", notifications)
	}

	tracker.Flush()
	if notifications != 1 {
		t.Errorf("flush notified %d times, want exactly 1", notifications)
	}

	// Idempotent: a second flush with nothing pending is silent.
	tracker.Flush()
	if notifications != 1 {
		t.Errorf("empty flush notified, total %d, want 1", notifications)
	}
}

func TestFlushSkipsDeletedElements(t *testing.T) {
	g, _, tracker := newTestTracker()

	tracker.BeginDrag()
	tracker.MarkDirty("a")

	// The node and its connection are deleted mid-drag.
	g.RemoveNode("a")

	tracker.EndDrag() // must not panic; stale ids are skipped

	if tracker.PendingNodes() != 0 || tracker.PendingConnections() != 0 {
		t.Errorf("pending sets not cleared: %d nodes, %d connections",
			tracker.PendingNodes(), tracker.PendingConnections())
	}
}

func TestLiveUpdateKeepsTrackerImmediate(t *testing.T) {
	g, idx, tracker := newTestTracker()

	tracker.SetLiveUpdate(true)
	tracker.BeginDrag()
	if tracker.Deferred() {
		t.Fatal("live-update tracker deferred during drag")
	}

	g.Node("a").Position = Vec2{X: 500, Y: 500}
	tracker.MarkDirty("a")

	// Bounds are current mid-drag.
	if res := idx.HitTest(Vec2{X: 550, Y: 525}); res.Kind != HitNode || res.NodeID != "a" {
		t.Errorf("mid-drag query = %+v, want node a at new position", res)
	}
	tracker.EndDrag()
}

func TestEnableLiveUpdateMidDragFlushes(t *testing.T) {
	g, idx, tracker := newTestTracker()

	tracker.BeginDrag()
	g.Node("a").Position = Vec2{X: 500, Y: 500}
	tracker.MarkDirty("a")

	if res := idx.HitTest(Vec2{X: 550, Y: 525}); res.Kind != HitNone {
		t.Fatalf("deferred move visible before flush: %+v", res)
	}

	// Turning the switch on mid-drag applies the backlog immediately.
	tracker.SetLiveUpdate(true)
	if res := idx.HitTest(Vec2{X: 550, Y: 525}); res.Kind != HitNode {
		t.Errorf("backlog not flushed on live-update enable: %+v", res)
	}
	if tracker.PendingNodes() != 0 {
		t.Errorf("pending nodes = %d after enable, want 0", tracker.PendingNodes())
	}

	// Turning it off mid-drag defers only subsequent marks.
	tracker.SetLiveUpdate(false)
	g.Node("a").Position = Vec2{X: 600, Y: 600}
	tracker.MarkDirty("a")
	if res := idx.HitTest(Vec2{X: 650, Y: 625}); res.Kind != HitNone {
		t.Errorf("post-disable mark applied immediately: %+v", res)
	}
	tracker.EndDrag()
	if res := idx.HitTest(Vec2{X: 650, Y: 625}); res.Kind != HitNode {
		t.Errorf("post-disable mark lost on drag end: %+v", res)
	}
}

func TestMarkDirtyManySharesOneBatch(t *testing.T) {
	g, idx, tracker := newTestTracker()

	notifications := 0
	idx.OnChanged(func() { notifications++ })

	g.Node("a").Position = Vec2{X: 10, Y: 10}
	g.Node("b").Position = Vec2{X: 310, Y: 10}
	tracker.MarkDirtyMany([]string{"a", "b"})

	if notifications != 1 {
		t.Errorf("MarkDirtyMany notified %d times, want 1", notifications)
	}
	if res := idx.HitTest(Vec2{X: 60, Y: 35}); res.NodeID != "a" {
		t.Errorf("node a not updated: %+v", res)
	}
	if res := idx.HitTest(Vec2{X: 360, Y: 35}); res.NodeID != "b" {
		t.Errorf("node b not updated: %+v", res)
	}
}

func TestConnectionFollowsBothEndpoints(t *testing.T) {
	g, idx, tracker := newTestTracker()

	// Moving the target node must mark the shared connection too.
	tracker.BeginDrag()
	g.Node("b").Position = Vec2{X: 300, Y: 400}
	tracker.MarkDirty("b")
	if tracker.PendingConnections() != 1 {
		t.Fatalf("pending connections = %d, want 1", tracker.PendingConnections())
	}
	tracker.EndDrag()

	// The straight path now runs from (100,25) to (300,425); its midpoint
	// is hittable, the old horizontal run is not.
	if res := idx.HitTest(Vec2{X: 200, Y: 225}); res.Kind != HitConnection {
		t.Errorf("re-routed connection = %v, want connection", res.Kind)
	}
	if res := idx.HitTest(Vec2{X: 200, Y: 25}); res.Kind != HitNone {
		t.Errorf("old route still hittable: %+v", res)
	}
}
