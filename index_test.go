package trellis

import (
	"math"
	"testing"
)

// newTestIndex builds an index over g with a fixed 10x10 port size and the
// built-in router wired into the resolver slots.
func newTestIndex(g *Graph) *SpatialIndex {
	idx := NewSpatialIndex(g)
	idx.PortSize = func(*Node, *Port) Size { return Size{Width: 10, Height: 10} }
	r := NewRouter()
	idx.Segments = r.Segments
	idx.PathHit = r.PathHit
	return idx
}

// twoNodeGraph builds the standard fixture: node a with an output port,
// node b with an input port, and one straight connection between them.
func twoNodeGraph() *Graph {
	g := NewGraph()
	g.AddNode(Node{
		ID:       "a",
		Position: Vec2{X: 0, Y: 0},
		Size:     Size{Width: 100, Height: 50},
		Ports:    []Port{{ID: "out", Offset: Vec2{X: 100, Y: 25}, Output: true}},
	})
	g.AddNode(Node{
		ID:       "b",
		Position: Vec2{X: 300, Y: 0},
		Size:     Size{Width: 100, Height: 50},
		Ports:    []Port{{ID: "in", Offset: Vec2{X: 0, Y: 25}}},
	})
	g.AddConnection(Connection{
		ID:         "a-b",
		SourceNode: "a", SourcePort: "out",
		TargetNode: "b", TargetPort: "in",
	})
	return g
}

func rebuildAll(idx *SpatialIndex, g *Graph) {
	idx.RebuildNodes(g.Nodes())
	idx.RebuildConnections(g.Connections())
	idx.RebuildAnnotations(g.Annotations())
}

func TestRebuildNodesRoundtrip(t *testing.T) {
	g := NewGraph()
	for i := 0; i < 20; i++ {
		g.AddNode(Node{
			Position: Vec2{X: float64(i) * 150, Y: float64(i%4) * 80},
			Size:     Size{Width: 100, Height: 50},
		})
	}
	idx := newTestIndex(g)
	idx.RebuildNodes(g.Nodes())

	// Every node must be hittable at its own center after a bulk load.
	for _, n := range g.Nodes() {
		res := idx.HitTest(n.Bounds().Center())
		if res.Kind != HitNode || res.NodeID != n.ID {
			t.Errorf("HitTest(center of %s) = %+v, want node %s", n.ID, res, n.ID)
		}
	}
}

func TestUpdateMovesNodeAndPorts(t *testing.T) {
	g := twoNodeGraph()
	idx := newTestIndex(g)
	idx.RebuildNodes(g.Nodes())

	a := g.Node("a")
	a.Position = Vec2{X: 500, Y: 500}
	idx.Update(a)

	if res := idx.HitTest(Vec2{X: 50, Y: 25}); res.Kind != HitNone {
		t.Errorf("old position still hits: %+v", res)
	}
	if res := idx.HitTest(Vec2{X: 550, Y: 525}); res.Kind != HitNode || res.NodeID != "a" {
		t.Errorf("new position = %+v, want node a", res)
	}
	// Ports move with the node.
	if res := idx.HitTest(Vec2{X: 600, Y: 525}); res.Kind != HitPort || res.PortID != "out" {
		t.Errorf("port at new position = %+v, want port out", res)
	}
}

func TestRemoveConnection(t *testing.T) {
	g := twoNodeGraph()
	idx := newTestIndex(g)
	rebuildAll(idx, g)

	mid := Vec2{X: 200, Y: 25}
	if res := idx.HitTest(mid); res.Kind != HitConnection {
		t.Fatalf("connection not hittable before removal: %+v", res)
	}
	idx.RemoveConnection("a-b")
	if res := idx.HitTest(mid); res.Kind != HitNone {
		t.Errorf("connection still hittable after removal: %+v", res)
	}
}

func TestRemoveDeletesAllEntryKinds(t *testing.T) {
	g := twoNodeGraph()
	g.AddAnnotation(Annotation{ID: "note", Bounds: Rect{X: 600, Y: 0, Width: 50, Height: 50}})
	idx := newTestIndex(g)
	rebuildAll(idx, g)

	idx.Remove("a")
	if res := idx.HitTest(Vec2{X: 50, Y: 25}); res.Kind != HitNone {
		t.Errorf("node a still hittable: %+v", res)
	}
	if res := idx.HitTest(Vec2{X: 100, Y: 25}); res.Kind == HitPort {
		t.Errorf("port of removed node still hittable: %+v", res)
	}
	idx.Remove("note")
	if res := idx.HitTest(Vec2{X: 625, Y: 25}); res.Kind != HitNone {
		t.Errorf("annotation still hittable: %+v", res)
	}
	idx.Remove("no-such-id") // no-op, must not panic
}

func TestClear(t *testing.T) {
	g := twoNodeGraph()
	idx := newTestIndex(g)
	rebuildAll(idx, g)
	if idx.EntryCount() == 0 {
		t.Fatal("index empty after rebuild")
	}
	idx.Clear()
	if idx.EntryCount() != 0 {
		t.Errorf("EntryCount = %d after Clear, want 0", idx.EntryCount())
	}
}

func TestMissingEndpointSkipped(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a", Position: Vec2{}, Size: Size{Width: 100, Height: 50}})
	g.AddConnection(Connection{ID: "dangling", SourceNode: "a", TargetNode: "ghost"})
	idx := newTestIndex(g)
	rebuildAll(idx, g)

	// The dangling connection contributes no entries and no hits.
	if res := idx.HitTest(Vec2{X: 200, Y: 25}); res.Kind != HitNone {
		t.Errorf("dangling connection produced a hit: %+v", res)
	}
}

func TestDegenerateBoundsFiltered(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "nan", Position: Vec2{X: math.NaN()}, Size: Size{Width: 10, Height: 10}})
	g.AddNode(Node{ID: "inf", Position: Vec2{X: math.Inf(1)}, Size: Size{Width: 10, Height: 10}})
	g.AddNode(Node{ID: "flat", Position: Vec2{X: 0, Y: 0}, Size: Size{Width: 0, Height: 10}})
	idx := newTestIndex(g)
	idx.RebuildNodes(g.Nodes())

	if n := idx.EntryCount(); n != 0 {
		t.Errorf("EntryCount = %d, want 0 (all bounds degenerate)", n)
	}
}

func TestBatchNotifiesExactlyOnce(t *testing.T) {
	g := twoNodeGraph()
	idx := newTestIndex(g)
	idx.RebuildNodes(g.Nodes())

	notifications := 0
	idx.OnChanged(func() { notifications++ })

	idx.Batch(func() {
		for _, n := range g.Nodes() {
			n.Position = n.Position.Add(Vec2{X: 10, Y: 10})
			idx.Update(n)
		}
		idx.NotifyChanged() // explicit signal also coalesced
	})

	if notifications != 1 {
		t.Errorf("notifications = %d, want exactly 1", notifications)
	}
	// Updates inside the batch were applied synchronously.
	if res := idx.HitTest(Vec2{X: 15, Y: 15}); res.Kind != HitNode || res.NodeID != "a" {
		t.Errorf("post-batch hit = %+v, want node a", res)
	}
}

func TestNestedBatchNotifiesOnceAtOutermost(t *testing.T) {
	g := twoNodeGraph()
	idx := newTestIndex(g)
	idx.RebuildNodes(g.Nodes())

	notifications := 0
	idx.OnChanged(func() { notifications++ })

	idx.Batch(func() {
		idx.Batch(func() {
			idx.Update(g.Node("a"))
		})
		if notifications != 0 {
			t.Error("inner batch leaked a notification")
		}
		idx.Update(g.Node("b"))
	})
	if notifications != 1 {
		t.Errorf("notifications = %d, want 1", notifications)
	}
}

func TestListenerHandleRemove(t *testing.T) {
	g := twoNodeGraph()
	idx := newTestIndex(g)

	calls := 0
	handle := idx.OnChanged(func() { calls++ })
	idx.NotifyChanged()
	handle.Remove()
	idx.NotifyChanged()

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (listener fired after Remove)", calls)
	}
}

func TestMutationsNotifyOutsideBatch(t *testing.T) {
	g := twoNodeGraph()
	idx := newTestIndex(g)

	notifications := 0
	idx.OnChanged(func() { notifications++ })

	idx.RebuildNodes(g.Nodes())
	idx.Update(g.Node("a"))
	idx.RemoveConnection("missing-is-a-noop")

	if notifications != 2 {
		t.Errorf("notifications = %d, want 2 (rebuild + update, no-op remove silent)", notifications)
	}
}

func TestPortSizeResolverRequired(t *testing.T) {
	g := twoNodeGraph()
	idx := NewSpatialIndex(g) // no resolvers configured

	defer func() {
		if recover() == nil {
			t.Error("indexing a port without a size resolver did not panic")
		}
	}()
	idx.RebuildNodes(g.Nodes())
}

func TestSegmentsResolverRequired(t *testing.T) {
	g := twoNodeGraph()
	idx := NewSpatialIndex(g)

	defer func() {
		if recover() == nil {
			t.Error("RebuildConnections without a segments resolver did not panic")
		}
	}()
	idx.RebuildConnections(g.Connections())
}

func TestPerPortSizeOverride(t *testing.T) {
	g := NewGraph()
	big := Size{Width: 40, Height: 40}
	g.AddNode(Node{
		ID:       "a",
		Position: Vec2{X: 0, Y: 0},
		Size:     Size{Width: 100, Height: 50},
		Ports:    []Port{{ID: "wide", Offset: Vec2{X: 100, Y: 25}, Size: &big, Output: true}},
	})
	idx := NewSpatialIndex(g) // no PortSize resolver: override must suffice
	idx.RebuildNodes(g.Nodes())

	// 18 units from the anchor: inside the 40x40 override (+ snap),
	// far outside a default small port.
	if res := idx.HitTest(Vec2{X: 118, Y: 25}); res.Kind != HitPort || res.PortID != "wide" {
		t.Errorf("HitTest = %+v, want port wide", res)
	}
}

func BenchmarkHitTest1000Nodes(b *testing.B) {
	g := NewGraph()
	for i := 0; i < 1000; i++ {
		g.AddNode(Node{
			Position: Vec2{X: float64(i%50) * 120, Y: float64(i/50) * 80},
			Size:     Size{Width: 100, Height: 50},
			Ports:    []Port{{ID: "out", Offset: Vec2{X: 100, Y: 25}, Output: true}},
		})
	}
	idx := newTestIndex(g)
	idx.RebuildNodes(g.Nodes())
	p := Vec2{X: 3050, Y: 825}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.HitTest(p)
	}
}
