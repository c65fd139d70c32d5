// Package graph holds the typed attack-tree node model and an indexed,
// read-only view over it. Mutation goes through Store; evaluation and
// classification read immutable snapshots.
package graph

import "fmt"

// Graph is an indexed, read-only view over a set of nodes. The node-id
// namespace is unique across the whole project: leaves, gates, and all three
// root roles share it.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// NewGraph indexes the given nodes. Duplicate IDs and structurally invalid
// nodes are rejected.
func NewGraph(nodes []*Node) (*Graph, error) {
	g := &Graph{
		nodes: make(map[string]*Node, len(nodes)),
		order: make([]string, 0, len(nodes)),
	}
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return nil, err
		}
		if _, exists := g.nodes[n.ID]; exists {
			return nil, fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNode)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	return g, nil
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// IDs returns all node IDs in insertion order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Roots returns all roots of the given kind, in insertion order. This order
// defines "first owning root" for classifier queries.
func (g *Graph) Roots(kind RootKind) []*Node {
	var roots []*Node
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Kind == KindRoot && n.Root == kind {
			roots = append(roots, n)
		}
	}
	return roots
}

// Children resolves a node's child IDs to nodes. IDs that resolve to no node
// are skipped; a dangling reference is a structural non-finding, not an error.
func (g *Graph) Children(id string) []*Node {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c, ok := g.nodes[cid]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Reaches reports whether target is reachable from start by following
// children edges, inclusive of start itself. BFS, bounded by graph size, safe
// on cyclic data.
func (g *Graph) Reaches(start, target string) bool {
	if _, ok := g.nodes[start]; !ok {
		return false
	}
	if start == target {
		_, ok := g.nodes[target]
		return ok
	}
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		n, ok := g.nodes[current]
		if !ok {
			continue
		}
		for _, cid := range n.Children {
			if cid == target {
				return true
			}
			if !visited[cid] {
				visited[cid] = true
				queue = append(queue, cid)
			}
		}
	}
	return false
}

// withNode returns a copy of the graph with one node replaced. Shallow-copies
// the index so existing snapshots stay untouched.
func (g *Graph) withNode(n *Node) *Graph {
	nodes := make(map[string]*Node, len(g.nodes))
	for id, old := range g.nodes {
		nodes[id] = old
	}
	nodes[n.ID] = n
	return &Graph{nodes: nodes, order: g.order}
}
