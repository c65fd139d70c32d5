package graph

import (
	"errors"
	"testing"
)

// TestNode_Validate tests the structural invariants enforced per node shape
func TestNode_Validate(t *testing.T) {
	valid := []*Node{
		NewLeaf("leaf", AttackPotential{Time: 1, Expertise: 2}),
		NewGate("gate", GateAnd, "leaf"),
		NewGate("empty-gate", GateOr),
		NewRoot("root", RootAttack, GateUnset),
		NewRoot("tech", RootTechnical, GateOr, "leaf"),
	}
	for _, n := range valid {
		if err := n.Validate(); err != nil {
			t.Errorf("Expected %q to be valid, got %v", n.ID, err)
		}
	}

	invalid := []*Node{
		{ID: "", Kind: KindLeaf, Potential: &AttackPotential{}},
		{ID: "gated-leaf", Kind: KindLeaf, Gate: GateAnd, Potential: &AttackPotential{}},
		{ID: "leaf-with-children", Kind: KindLeaf, Potential: &AttackPotential{}, Children: []string{"x"}},
		{ID: "bare-leaf", Kind: KindLeaf},
		{ID: "ungated-gate", Kind: KindGate},
		{ID: "potent-gate", Kind: KindGate, Gate: GateAnd, Potential: &AttackPotential{}},
		{ID: "roleless-root", Kind: KindRoot},
		{ID: "weird", Kind: Kind(42)},
	}
	for _, n := range invalid {
		if err := n.Validate(); !errors.Is(err, ErrInvalidNode) {
			t.Errorf("Expected %q to fail with ErrInvalidNode, got %v", n.ID, err)
		}
	}
}

// TestNode_EffectiveGate tests the unset-means-AND default
func TestNode_EffectiveGate(t *testing.T) {
	root := NewRoot("root", RootAttack, GateUnset)
	if root.EffectiveGate() != GateAnd {
		t.Error("Expected unset gate to evaluate as AND")
	}
	or := NewGate("or", GateOr)
	if or.EffectiveGate() != GateOr {
		t.Error("Expected explicit OR to stay OR")
	}
}

// TestParseGateKind tests gate string parsing including the empty case
func TestParseGateKind(t *testing.T) {
	cases := map[string]GateKind{"": GateUnset, "AND": GateAnd, "and": GateAnd, "OR": GateOr, "or": GateOr}
	for in, want := range cases {
		got, err := ParseGateKind(in)
		if err != nil || got != want {
			t.Errorf("ParseGateKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseGateKind("XOR"); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("Expected ErrInvalidNode for unknown gate, got %v", err)
	}
}

// TestNewGraph_RejectsDuplicates tests duplicate-id rejection at index time
func TestNewGraph_RejectsDuplicates(t *testing.T) {
	_, err := NewGraph([]*Node{
		NewLeaf("a", AttackPotential{Time: 1}),
		NewLeaf("a", AttackPotential{Time: 2}),
	})
	if !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("Expected ErrDuplicateNode, got %v", err)
	}
}

// TestGraph_Roots tests role filtering in insertion order
func TestGraph_Roots(t *testing.T) {
	g, err := NewGraph([]*Node{
		NewRoot("c2", RootCircumvent, GateAnd),
		NewRoot("a1", RootAttack, GateAnd),
		NewRoot("c1", RootCircumvent, GateAnd),
	})
	if err != nil {
		t.Fatalf("NewGraph failed: %v", err)
	}

	roots := g.Roots(RootCircumvent)
	if len(roots) != 2 || roots[0].ID != "c2" || roots[1].ID != "c1" {
		t.Errorf("Expected circumvent roots [c2 c1] in insertion order, got %v", roots)
	}
	if len(g.Roots(RootTechnical)) != 0 {
		t.Error("Expected no technical roots")
	}
}

// TestGraph_ChildrenSkipsDangling tests that unresolved child ids are skipped
func TestGraph_ChildrenSkipsDangling(t *testing.T) {
	g, err := NewGraph([]*Node{
		NewGate("gate", GateAnd, "present", "ghost"),
		NewLeaf("present", AttackPotential{Time: 1}),
	})
	if err != nil {
		t.Fatalf("NewGraph failed: %v", err)
	}

	children := g.Children("gate")
	if len(children) != 1 || children[0].ID != "present" {
		t.Errorf("Expected only the resolvable child, got %v", children)
	}
	if g.Children("ghost") != nil {
		t.Error("Expected nil children for absent node")
	}
}

// TestGraph_Reaches tests BFS reachability including the cyclic case
func TestGraph_Reaches(t *testing.T) {
	g, err := NewGraph([]*Node{
		NewGate("a", GateAnd, "b"),
		NewGate("b", GateAnd, "c", "a"), // cycle back to a
		NewLeaf("c", AttackPotential{Time: 1}),
		NewLeaf("isolated", AttackPotential{Time: 1}),
	})
	if err != nil {
		t.Fatalf("NewGraph failed: %v", err)
	}

	if !g.Reaches("a", "c") {
		t.Error("Expected a to reach c")
	}
	if !g.Reaches("a", "a") {
		t.Error("Expected a node to reach itself")
	}
	if g.Reaches("a", "isolated") {
		t.Error("Expected isolated node to be unreachable")
	}
	if g.Reaches("ghost", "a") {
		t.Error("Expected absent start to reach nothing")
	}
}
