package trellis

import (
	"sort"

	"github.com/google/uuid"
)

// Port is a connection anchor on a node. Offset is the anchor point
// relative to the node's top-left corner, in graph units. Size overrides
// the editor-wide port size when non-nil.
type Port struct {
	ID     string
	Offset Vec2
	Size   *Size
	Output bool
}

// Node is one box on the canvas. Position is the top-left corner in graph
// space. UserData carries the application's payload; trellis never looks
// inside it, so the geometric core stays payload-agnostic.
type Node struct {
	ID       string
	Position Vec2
	Size     Size
	Ports    []Port
	ZIndex   int
	UserData any
}

// Bounds returns the node's bounding rectangle in graph space.
func (n *Node) Bounds() Rect {
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: n.Size.Width, Height: n.Size.Height}
}

// Port returns the port with the given id, or nil.
func (n *Node) Port(id string) *Port {
	for i := range n.Ports {
		if n.Ports[i].ID == id {
			return &n.Ports[i]
		}
	}
	return nil
}

// PortAnchor returns the graph-space anchor point of the given port.
func (n *Node) PortAnchor(p *Port) Vec2 {
	return n.Position.Add(p.Offset)
}

// PathStyle selects how a connection's path is routed between its ports.
type PathStyle uint8

const (
	PathStraight   PathStyle = iota // single line segment
	PathOrthogonal                  // axis-aligned elbow route
	PathBezier                      // cubic bezier with horizontal tangents
)

// Connection links an output port on one node to an input port on another.
// Either endpoint may reference a node that does not (yet) exist; such a
// connection is skipped by the spatial index until both endpoints resolve.
type Connection struct {
	ID         string
	SourceNode string
	SourcePort string
	TargetNode string
	TargetPort string
	Style      PathStyle
	ZIndex     int
	UserData   any
}

// Annotation is a background element (comment box, group frame) with fixed
// bounds. Annotations sit visually behind nodes and hit-test last.
type Annotation struct {
	ID       string
	Bounds   Rect
	ZIndex   int
	UserData any
}

// Graph owns the node, connection, and annotation collections and keeps the
// connection-by-node lookup in sync with them. It is purely a data holder:
// mutating a stored element's geometry does not touch any index — callers
// route geometry changes through a DirtyTracker or SpatialIndex.
type Graph struct {
	nodes       map[string]*Node
	nodeOrder   []string
	connections map[string]*Connection
	connOrder   []string
	annotations map[string]*Annotation
	annOrder    []string

	// connsByNode maps a node id to the ids of connections touching it, so
	// moving a node can discover affected connections without scanning the
	// whole connection list.
	connsByNode map[string]map[string]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:       make(map[string]*Node),
		connections: make(map[string]*Connection),
		annotations: make(map[string]*Annotation),
		connsByNode: make(map[string]map[string]struct{}),
	}
}

// AddNode inserts a node and returns the stored pointer. A blank ID is
// replaced with a generated uuid. Panics on a duplicate id.
func (g *Graph) AddNode(n Node) *Node {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if _, ok := g.nodes[n.ID]; ok {
		panic("trellis: duplicate node id " + n.ID)
	}
	stored := &n
	g.nodes[n.ID] = stored
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return stored
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// RemoveNode deletes a node together with every connection attached to it.
// Removing an unknown id is a no-op.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for connID := range g.connsByNode[id] {
		g.RemoveConnection(connID)
	}
	delete(g.nodes, id)
	g.nodeOrder = removeID(g.nodeOrder, id)
}

// Nodes returns the nodes in insertion order. The returned slice is owned
// by the caller.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// RenderOrder returns the nodes sorted back-to-front: ascending ZIndex,
// insertion order within equal ZIndex. This is the default render order
// provider for a SpatialIndex when the application has no renderer of its
// own to ask.
func (g *Graph) RenderOrder() []*Node {
	out := g.Nodes()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// AddConnection inserts a connection and returns the stored pointer. A
// blank ID is replaced with a generated uuid. Panics on a duplicate id.
// Endpoints are not validated: a connection may be added before its nodes.
func (g *Graph) AddConnection(c Connection) *Connection {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, ok := g.connections[c.ID]; ok {
		panic("trellis: duplicate connection id " + c.ID)
	}
	stored := &c
	g.connections[c.ID] = stored
	g.connOrder = append(g.connOrder, c.ID)
	g.linkConnection(stored)
	return stored
}

// Connection returns the connection with the given id, or nil.
func (g *Graph) Connection(id string) *Connection {
	return g.connections[id]
}

// RemoveConnection deletes a connection and its connection-by-node rows.
// Removing an unknown id is a no-op.
func (g *Graph) RemoveConnection(id string) {
	c, ok := g.connections[id]
	if !ok {
		return
	}
	g.unlinkConnection(c)
	delete(g.connections, id)
	g.connOrder = removeID(g.connOrder, id)
}

// Connections returns the connections in insertion order.
func (g *Graph) Connections() []*Connection {
	out := make([]*Connection, 0, len(g.connOrder))
	for _, id := range g.connOrder {
		out = append(out, g.connections[id])
	}
	return out
}

// ConnectionsForNode returns the ids of connections touching the given
// node, in unspecified order.
func (g *Graph) ConnectionsForNode(nodeID string) []string {
	set := g.connsByNode[nodeID]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// AddAnnotation inserts an annotation and returns the stored pointer. A
// blank ID is replaced with a generated uuid. Panics on a duplicate id.
func (g *Graph) AddAnnotation(a Annotation) *Annotation {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, ok := g.annotations[a.ID]; ok {
		panic("trellis: duplicate annotation id " + a.ID)
	}
	stored := &a
	g.annotations[a.ID] = stored
	g.annOrder = append(g.annOrder, a.ID)
	return stored
}

// Annotation returns the annotation with the given id, or nil.
func (g *Graph) Annotation(id string) *Annotation {
	return g.annotations[id]
}

// RemoveAnnotation deletes an annotation. Unknown ids are a no-op.
func (g *Graph) RemoveAnnotation(id string) {
	if _, ok := g.annotations[id]; !ok {
		return
	}
	delete(g.annotations, id)
	g.annOrder = removeID(g.annOrder, id)
}

// Annotations returns the annotations in insertion order.
func (g *Graph) Annotations() []*Annotation {
	out := make([]*Annotation, 0, len(g.annOrder))
	for _, id := range g.annOrder {
		out = append(out, g.annotations[id])
	}
	return out
}

// Clear drops every element and lookup row.
func (g *Graph) Clear() {
	g.nodes = make(map[string]*Node)
	g.nodeOrder = nil
	g.connections = make(map[string]*Connection)
	g.connOrder = nil
	g.annotations = make(map[string]*Annotation)
	g.annOrder = nil
	g.connsByNode = make(map[string]map[string]struct{})
}

func (g *Graph) linkConnection(c *Connection) {
	for _, nodeID := range [2]string{c.SourceNode, c.TargetNode} {
		set := g.connsByNode[nodeID]
		if set == nil {
			set = make(map[string]struct{})
			g.connsByNode[nodeID] = set
		}
		set[c.ID] = struct{}{}
	}
}

func (g *Graph) unlinkConnection(c *Connection) {
	for _, nodeID := range [2]string{c.SourceNode, c.TargetNode} {
		set := g.connsByNode[nodeID]
		delete(set, c.ID)
		if len(set) == 0 {
			delete(g.connsByNode, nodeID)
		}
	}
}

// removeID deletes the first occurrence of id from order, preserving the
// remaining order. Uses copy+truncate to avoid retaining the tail slot.
func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			copy(order[i:], order[i+1:])
			order[len(order)-1] = ""
			return order[:len(order)-1]
		}
	}
	return order
}
