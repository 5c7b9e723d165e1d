package trellis

import (
	"math"
	"sort"
)

// HitTest resolves a graph-space point to the single element a user would
// expect to grab, in priority order:
//
//  1. Ports, with bounds expanded by SnapDistance. Ports are the smallest
//     targets and must win over the node they sit on.
//  2. Nodes, respecting a custom Shape when one was built for the node.
//  3. Connections: segments reject cheaply by bounding box, then the
//     precise PathHit resolver confirms an actual path intersection.
//  4. Annotations, which sit visually behind everything interactive.
//  5. The empty canvas.
//
// Within ports and nodes the topmost element wins, walking the render
// order provider's paint order back-to-front in reverse — so hit-testing
// always agrees with what is visually on top. Connections and annotations
// break ties by ZIndex, then by insertion recency.
func (s *SpatialIndex) HitTest(p Vec2) HitResult {
	order := s.renderOrderNodes()

	if addr, ok := s.topPortAt(p, order); ok {
		return HitResult{
			Kind:     HitPort,
			Position: p,
			NodeID:   addr.NodeID,
			PortID:   addr.PortID,
			IsOutput: addr.IsOutput,
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		e, ok := s.nodeEntries[order[i].ID]
		if !ok {
			continue
		}
		if e.shape != nil {
			if !e.shape.Contains(p.X, p.Y) {
				continue
			}
		} else if !e.bounds.Contains(p.X, p.Y) {
			continue
		}
		return HitResult{Kind: HitNode, Position: p, NodeID: e.nodeID}
	}

	if id, ok := s.connectionAt(p); ok {
		return HitResult{Kind: HitConnection, Position: p, ConnectionID: id}
	}

	if id, ok := s.annotationAt(p); ok {
		return HitResult{Kind: HitAnnotation, Position: p, AnnotationID: id}
	}

	return HitResult{Kind: HitNone, Position: p}
}

// HitTestPort is the narrow query used while dragging a connection: only
// port targets matter, and nothing stacked on top of a port may shadow it.
func (s *SpatialIndex) HitTestPort(p Vec2) (PortAddress, bool) {
	return s.topPortAt(p, s.renderOrderNodes())
}

// topPortAt returns the topmost port whose snap-expanded bounds contain p.
// Among overlapping ports of the same node, the one whose center is nearest
// the point wins, which is what connection snapping wants.
func (s *SpatialIndex) topPortAt(p Vec2, order []*Node) (PortAddress, bool) {
	for i := len(order) - 1; i >= 0; i-- {
		ports := s.portEntries[order[i].ID]
		best := -1
		bestDist := math.Inf(1)
		for j := range ports {
			if !ports[j].bounds.Expand(s.SnapDistance).Contains(p.X, p.Y) {
				continue
			}
			center := ports[j].bounds.Center()
			dx, dy := p.X-center.X, p.Y-center.Y
			if d := dx*dx + dy*dy; d < bestDist {
				bestDist = d
				best = j
			}
		}
		if best >= 0 {
			e := &ports[best]
			return PortAddress{NodeID: e.nodeID, PortID: e.portID, IsOutput: e.isOutput}, true
		}
	}
	return PortAddress{}, false
}

// connectionAt runs the two-phase connection test: collect candidate
// connections by segment bounds, order them topmost-first, then confirm
// against the precise path until one passes.
func (s *SpatialIndex) connectionAt(p Vec2) (string, bool) {
	type candidate struct {
		id     string
		zIndex int
		seq    uint64
	}
	var candidates []candidate
	for id, segs := range s.connEntries {
		for i := range segs {
			if segs[i].bounds.Contains(p.X, p.Y) {
				candidates = append(candidates, candidate{id: id, zIndex: segs[i].zIndex, seq: segs[i].seq})
				break
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	if s.PathHit == nil {
		panic("trellis: connection path hit tester not configured")
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].zIndex != candidates[j].zIndex {
			return candidates[i].zIndex > candidates[j].zIndex
		}
		return candidates[i].seq > candidates[j].seq
	})
	for _, cand := range candidates {
		c := s.graph.Connection(cand.id)
		if c == nil {
			continue // stale entry, deleted mid-interaction
		}
		src, dst := s.endpoints(c)
		if src == nil || dst == nil {
			continue
		}
		if s.PathHit(c, src, dst, p) {
			return cand.id, true
		}
	}
	return "", false
}

// annotationAt returns the topmost annotation containing p.
func (s *SpatialIndex) annotationAt(p Vec2) (string, bool) {
	bestID := ""
	var bestZ int
	var bestSeq uint64
	found := false
	for id, e := range s.annEntries {
		if !e.bounds.Contains(p.X, p.Y) {
			continue
		}
		if !found || e.zIndex > bestZ || (e.zIndex == bestZ && e.seq > bestSeq) {
			bestID, bestZ, bestSeq = id, e.zIndex, e.seq
			found = true
		}
	}
	return bestID, found
}

// QueryRect returns the ids of nodes whose bounds are fully contained in
// the graph-space rectangle — all four corners inside. A node merely
// overlapping the rectangle's edge is excluded, so a small marquee crossing
// a large container never accidentally selects it. Results come back in
// render order.
func (s *SpatialIndex) QueryRect(r Rect) []string {
	var out []string
	for _, n := range s.renderOrderNodes() {
		e, ok := s.nodeEntries[n.ID]
		if !ok {
			continue
		}
		if r.ContainsRect(e.bounds) {
			out = append(out, e.nodeID)
		}
	}
	return out
}

func (s *SpatialIndex) renderOrderNodes() []*Node {
	if s.RenderOrder == nil {
		panic("trellis: render order provider not configured")
	}
	return s.RenderOrder()
}
