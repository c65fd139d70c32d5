package graph

import "fmt"

// Kind discriminates the three node shapes of an attack tree.
type Kind int

const (
	// KindLeaf is an atomic attack step carrying an attack potential.
	KindLeaf Kind = iota
	// KindGate combines its children under AND/OR semantics.
	KindGate
	// KindRoot marks the top of an independently displayed tree.
	KindRoot
)

// String returns the string representation of a node kind.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "LEAF"
	case KindGate:
		return "GATE"
	case KindRoot:
		return "ROOT"
	default:
		return "UNKNOWN"
	}
}

// GateKind is the combination semantics applied to a non-leaf node's children.
type GateKind int

const (
	// GateUnset means the node has not been assigned a gate yet. Evaluation
	// treats an unset gate as AND.
	GateUnset GateKind = iota
	GateAnd
	GateOr
)

// String returns the string representation of a gate kind.
func (g GateKind) String() string {
	switch g {
	case GateAnd:
		return "AND"
	case GateOr:
		return "OR"
	default:
		return ""
	}
}

// ParseGateKind converts a persisted gate string to a GateKind.
func ParseGateKind(s string) (GateKind, error) {
	switch s {
	case "":
		return GateUnset, nil
	case "AND", "and":
		return GateAnd, nil
	case "OR", "or":
		return GateOr, nil
	default:
		return GateUnset, fmt.Errorf("parse gate %q: %w", s, ErrInvalidNode)
	}
}

// RootKind is the role of a root node.
type RootKind int

const (
	// RootAttack is the top of a regular attack tree.
	RootAttack RootKind = iota + 1
	// RootCircumvent models defeating a security control; circumvent
	// subtrees are excluded in initial-risk evaluations.
	RootCircumvent
	// RootTechnical is a reusable technical sub-procedure.
	RootTechnical
)

// String returns the string representation of a root kind.
func (r RootKind) String() string {
	switch r {
	case RootAttack:
		return "ATTACK"
	case RootCircumvent:
		return "CIRCUMVENT"
	case RootTechnical:
		return "TECHNICAL"
	default:
		return ""
	}
}

// Node is the atomic unit of an attack tree. Use the constructors; they keep
// illegal shapes (a leaf carrying a gate, a gate carrying a potential) out of
// the graph.
type Node struct {
	ID   string
	Kind Kind

	// Gate is meaningful for KindGate and KindRoot. GateUnset on a root means
	// the author has not chosen combination semantics yet.
	Gate GateKind

	// Root is meaningful only for KindRoot.
	Root RootKind

	// Potential is present only on leaves.
	Potential *AttackPotential

	// Children are outgoing edges, in authoring order. Empty for leaves.
	Children []string

	// RequiredConfigs lists TOE configuration IDs that must all be active
	// for this node to be reachable. Empty means always reachable.
	RequiredConfigs []string
}

// NewLeaf creates a leaf node with the given attack potential.
func NewLeaf(id string, potential AttackPotential, requiredConfigs ...string) *Node {
	return &Node{
		ID:              id,
		Kind:            KindLeaf,
		Potential:       &potential,
		RequiredConfigs: requiredConfigs,
	}
}

// NewGate creates a gate node combining the given children.
func NewGate(id string, gate GateKind, children ...string) *Node {
	return &Node{
		ID:       id,
		Kind:     KindGate,
		Gate:     gate,
		Children: children,
	}
}

// NewRoot creates a root node of the given role. The gate may be GateUnset
// until the author links children under it.
func NewRoot(id string, root RootKind, gate GateKind, children ...string) *Node {
	return &Node{
		ID:       id,
		Kind:     KindRoot,
		Root:     root,
		Gate:     gate,
		Children: children,
	}
}

// IsCircumventRoot reports whether the node is a circumvent root.
func (n *Node) IsCircumventRoot() bool {
	return n.Kind == KindRoot && n.Root == RootCircumvent
}

// IsTechnicalRoot reports whether the node is a technical root.
func (n *Node) IsTechnicalRoot() bool {
	return n.Kind == KindRoot && n.Root == RootTechnical
}

// EffectiveGate returns the gate evaluation should apply. An unset gate on a
// gate or root node defaults to AND.
func (n *Node) EffectiveGate() GateKind {
	if n.Gate == GateUnset {
		return GateAnd
	}
	return n.Gate
}

// Validate checks structural invariants of a single node.
func (n *Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("node has empty id: %w", ErrInvalidNode)
	}
	switch n.Kind {
	case KindLeaf:
		if n.Gate != GateUnset {
			return fmt.Errorf("leaf %q carries a gate: %w", n.ID, ErrInvalidNode)
		}
		if len(n.Children) != 0 {
			return fmt.Errorf("leaf %q has children: %w", n.ID, ErrInvalidNode)
		}
		if n.Potential == nil {
			return fmt.Errorf("leaf %q has no attack potential: %w", n.ID, ErrInvalidNode)
		}
	case KindGate:
		if n.Gate == GateUnset {
			return fmt.Errorf("gate %q has no gate kind: %w", n.ID, ErrInvalidNode)
		}
		if n.Potential != nil {
			return fmt.Errorf("gate %q carries an attack potential: %w", n.ID, ErrInvalidNode)
		}
	case KindRoot:
		if n.Root == 0 {
			return fmt.Errorf("root %q has no root kind: %w", n.ID, ErrInvalidNode)
		}
		if n.Potential != nil {
			return fmt.Errorf("root %q carries an attack potential: %w", n.ID, ErrInvalidNode)
		}
	default:
		return fmt.Errorf("node %q has unknown kind %d: %w", n.ID, n.Kind, ErrInvalidNode)
	}
	return nil
}

// clone returns a deep copy of the node. Used by the store's copy-on-write
// mutations so snapshots stay immutable.
func (n *Node) clone() *Node {
	c := *n
	if n.Potential != nil {
		p := *n.Potential
		c.Potential = &p
	}
	c.Children = append([]string(nil), n.Children...)
	c.RequiredConfigs = append([]string(nil), n.RequiredConfigs...)
	return &c
}
