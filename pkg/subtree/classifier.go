// Package subtree resolves membership of nodes in reusable circumvent and
// technical sub-trees. Pure queries over a graph snapshot; absent IDs yield
// false/none, never an error.
package subtree

import "github.com/taraforge/attacktree/pkg/graph"

// Classifier answers membership and owning-root queries against one graph
// snapshot. Construct a new one per snapshot; it holds no other state.
type Classifier struct {
	graph *graph.Graph
}

// NewClassifier creates a classifier over the given snapshot.
func NewClassifier(g *graph.Graph) *Classifier {
	return &Classifier{graph: g}
}

// IsCircumventMember reports whether nodeID is reachable from any circumvent
// root, inclusive of the root itself.
func (c *Classifier) IsCircumventMember(nodeID string) bool {
	_, ok := c.owningRoot(graph.RootCircumvent, nodeID)
	return ok
}

// IsTechnicalMember reports whether nodeID is reachable from any technical
// root, inclusive of the root itself.
func (c *Classifier) IsTechnicalMember(nodeID string) bool {
	_, ok := c.owningRoot(graph.RootTechnical, nodeID)
	return ok
}

// OwningCircumventRoot returns the first circumvent root (in root iteration
// order) whose reachable set contains nodeID.
func (c *Classifier) OwningCircumventRoot(nodeID string) (string, bool) {
	return c.owningRoot(graph.RootCircumvent, nodeID)
}

// OwningTechnicalRoot returns the first technical root (in root iteration
// order) whose reachable set contains nodeID.
func (c *Classifier) OwningTechnicalRoot(nodeID string) (string, bool) {
	return c.owningRoot(graph.RootTechnical, nodeID)
}

// owningRoot runs an independent BFS from each root of the given kind,
// short-circuiting once the target is found. Visited sets keep it safe on
// cyclic data.
func (c *Classifier) owningRoot(kind graph.RootKind, nodeID string) (string, bool) {
	if _, ok := c.graph.Node(nodeID); !ok {
		return "", false
	}
	for _, root := range c.graph.Roots(kind) {
		if root.ID == nodeID || c.graph.Reaches(root.ID, nodeID) {
			return root.ID, true
		}
	}
	return "", false
}
