package arbor

import "fmt"

// NodeID identifies a tree node. Identifiers are unique within a tree and
// stable across layouts.
type NodeID int64

// NoNode tags decorative draw commands that have no originating node.
const NoNode NodeID = -1

// Node is one vertex of the input tree. Nodes are read-only during layout;
// layouts keep their per-run scratch (orientation, assigned size) in side
// tables keyed by ID instead of writing it here.
type Node struct {
	ID       NodeID
	Label    string
	Children []*Node
	Selected bool

	// Attrs holds optional numeric attributes a layout may require.
	Attrs map[string]float64
}

// Metrics are derived per node when a Tree is built.
type Metrics struct {
	// SubtreeSize is the number of nodes in the subtree, self inclusive.
	SubtreeSize int
	// Depth is the distance from the root (root = 0).
	Depth int
	// MaxDepth is the deepest depth reached by any node in the subtree.
	MaxDepth int
}

// Tree is a validated tree with an ID index and a metrics side table.
type Tree struct {
	root     *Node
	nodes    map[NodeID]*Node
	parents  map[NodeID]NodeID
	metrics  map[NodeID]Metrics
	order    []*Node // pre-order
	maxDepth int
	selected *Node
}

// NewTree validates root and computes per-node metrics. It fails with
// ErrInvalidTree when root is nil, when a node is reachable twice (cycles
// and shared subtrees alike), or when identifiers are negative or repeated.
func NewTree(root *Node) (*Tree, error) {
	if root == nil {
		return nil, &LayoutError{Layout: "tree", Node: NoNode, Err: fmt.Errorf("%w: nil root", ErrInvalidTree)}
	}
	t := &Tree{
		root:    root,
		nodes:   make(map[NodeID]*Node),
		parents: make(map[NodeID]NodeID),
		metrics: make(map[NodeID]Metrics),
	}
	visited := make(map[*Node]bool)
	if _, err := t.index(root, NoNode, 0, visited); err != nil {
		return nil, err
	}
	t.maxDepth = t.metrics[root.ID].MaxDepth
	debugCheckTree(t)
	return t, nil
}

// index walks the tree depth-first. The walk is iterative over children but
// recursive over depth; visited guards against cycles before recursing.
func (t *Tree) index(n *Node, parent NodeID, depth int, visited map[*Node]bool) (Metrics, error) {
	if n == nil {
		return Metrics{}, &LayoutError{Layout: "tree", Node: parent, Err: fmt.Errorf("%w: nil child", ErrInvalidTree)}
	}
	if visited[n] {
		return Metrics{}, &LayoutError{Layout: "tree", Node: n.ID, Err: fmt.Errorf("%w: node reachable more than once (cycle)", ErrInvalidTree)}
	}
	visited[n] = true
	if n.ID < 0 {
		return Metrics{}, &LayoutError{Layout: "tree", Node: NoNode, Err: fmt.Errorf("%w: negative id %d", ErrInvalidTree, n.ID)}
	}
	if _, dup := t.nodes[n.ID]; dup {
		return Metrics{}, &LayoutError{Layout: "tree", Node: n.ID, Err: fmt.Errorf("%w: duplicate id", ErrInvalidTree)}
	}
	t.nodes[n.ID] = n
	t.parents[n.ID] = parent
	t.order = append(t.order, n)
	if n.Selected && t.selected == nil {
		t.selected = n
	}

	m := Metrics{SubtreeSize: 1, Depth: depth, MaxDepth: depth}
	for _, c := range n.Children {
		cm, err := t.index(c, n.ID, depth+1, visited)
		if err != nil {
			return Metrics{}, err
		}
		m.SubtreeSize += cm.SubtreeSize
		if cm.MaxDepth > m.MaxDepth {
			m.MaxDepth = cm.MaxDepth
		}
	}
	t.metrics[n.ID] = m
	return m, nil
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.order) }

// MaxDepth returns the depth of the deepest node.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// Node returns the node with the given ID, or nil.
func (t *Tree) Node(id NodeID) *Node { return t.nodes[id] }

// Metrics returns the derived metrics for id.
func (t *Tree) Metrics(id NodeID) (Metrics, bool) {
	m, ok := t.metrics[id]
	return m, ok
}

// Parent returns the parent ID of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	p, ok := t.parents[id]
	if !ok {
		return NoNode
	}
	return p
}

// Walk calls fn for every node in pre-order.
func (t *Tree) Walk(fn func(n *Node, m Metrics)) {
	for _, n := range t.order {
		fn(n, t.metrics[n.ID])
	}
}

// Selected returns the selected node, or nil.
func (t *Tree) Selected() *Node { return t.selected }

// Select marks id as the only selected node. Selecting an unknown ID clears
// the selection. Returns the newly selected node.
func (t *Tree) Select(id NodeID) *Node {
	t.ClearSelection()
	n := t.nodes[id]
	if n != nil {
		n.Selected = true
		t.selected = n
	}
	return n
}

// ClearSelection removes the selection flag from every node.
func (t *Tree) ClearSelection() {
	for _, n := range t.order {
		n.Selected = false
	}
	t.selected = nil
}

// Clone returns a deep copy of the tree sharing no nodes with t. Layouts
// running off the interactive goroutine work on a clone so that selection
// changes cannot race with them.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:    make(map[NodeID]*Node, len(t.nodes)),
		parents:  make(map[NodeID]NodeID, len(t.parents)),
		metrics:  make(map[NodeID]Metrics, len(t.metrics)),
		order:    make([]*Node, 0, len(t.order)),
		maxDepth: t.maxDepth,
	}
	for id, p := range t.parents {
		c.parents[id] = p
	}
	for id, m := range t.metrics {
		c.metrics[id] = m
	}
	c.root = c.cloneNode(t.root)
	if t.selected != nil {
		c.selected = c.nodes[t.selected.ID]
	}
	return c
}

func (c *Tree) cloneNode(n *Node) *Node {
	cp := &Node{ID: n.ID, Label: n.Label, Selected: n.Selected}
	if n.Attrs != nil {
		cp.Attrs = make(map[string]float64, len(n.Attrs))
		for k, v := range n.Attrs {
			cp.Attrs[k] = v
		}
	}
	c.nodes[cp.ID] = cp
	c.order = append(c.order, cp)
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			cp.Children[i] = c.cloneNode(ch)
		}
	}
	return cp
}
