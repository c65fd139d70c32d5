// Package topology validates proposed attack-tree edge mutations: cycle
// formation and the circumvent-attachment rule of ISO/SAE 21434 Definition
// 4.9. It never mutates the graph; it reports the gate-assignment decision
// the caller must apply.
package topology

import "github.com/taraforge/attacktree/pkg/graph"

// WouldCreateCycle reports whether adding source -> target would close a
// loop: true iff source == target, or source is already reachable from
// target via existing children edges. BFS from target looking for source.
// This check is mandatory before any edge is added.
func WouldCreateCycle(g *graph.Graph, sourceID, targetID string) bool {
	if sourceID == targetID {
		return true
	}
	return g.Reaches(targetID, sourceID)
}

// Validator implements the pre-mutation link checks. It satisfies
// graph.LinkValidator so a Store can consult it on every Link.
type Validator struct{}

// NewValidator creates a topology validator.
func NewValidator() Validator {
	return Validator{}
}

// CheckLink validates a proposed source -> target edge. On acceptance it
// returns the gate the parent must end up with; assign is true when the
// caller has to change the parent's gate (a gateless parent adopting a
// circumvent child implicitly becomes AND).
//
// The circumvent rule: a circumvent root may only hang under a parent whose
// gate ends up AND, unless the parent is an OR gate and, after the addition,
// every one of its children is itself a circumvent root. An attacker who must
// defeat a control guarding an attack step performs both the original step
// and the circumvention; plain OR semantics would let the attacker skip the
// original step.
func (Validator) CheckLink(g *graph.Graph, sourceID, targetID string) (graph.GateKind, bool, error) {
	source, ok := g.Node(sourceID)
	if !ok {
		return graph.GateUnset, false, rejection(sourceID, targetID, ReasonNodeNotFound, ErrNodeNotFound)
	}
	target, ok := g.Node(targetID)
	if !ok {
		return graph.GateUnset, false, rejection(sourceID, targetID, ReasonNodeNotFound, ErrNodeNotFound)
	}

	if WouldCreateCycle(g, sourceID, targetID) {
		return graph.GateUnset, false, rejection(sourceID, targetID, ReasonWouldCreateCycle, ErrWouldCreateCycle)
	}

	if !target.IsCircumventRoot() {
		return source.Gate, false, nil
	}

	switch source.Gate {
	case graph.GateAnd:
		return graph.GateAnd, false, nil
	case graph.GateUnset:
		// Implicit assignment: the parent becomes AND.
		return graph.GateAnd, true, nil
	case graph.GateOr:
		if allCircumventChildren(g, source) {
			return graph.GateOr, false, nil
		}
	}
	return graph.GateUnset, false, rejection(sourceID, targetID, ReasonIllegalCircumventAttachment, ErrIllegalCircumventAttachment)
}

// allCircumventChildren reports whether every existing child of the node is a
// circumvent root. Dangling child references disqualify the OR exemption;
// only a parent provably combining independent bypass routes keeps OR.
func allCircumventChildren(g *graph.Graph, node *graph.Node) bool {
	for _, cid := range node.Children {
		child, ok := g.Node(cid)
		if !ok || !child.IsCircumventRoot() {
			return false
		}
	}
	return true
}
