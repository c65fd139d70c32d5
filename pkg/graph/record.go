package graph

import "fmt"

// Tags used by the host's persisted format to mark root roles. A node's ROOT
// kind is recovered from its tag set on load.
const (
	TagAttackRoot     = "attack_tree_root"
	TagCircumventRoot = "circumvent_root"
	TagTechnicalRoot  = "technical_root"
)

// Record is the flat persisted form of a node: id, optional gate
// discriminator, optional potential tuple, ordered child ids, role tags, and
// required configuration ids. It mirrors the host application's serialization
// and is reinterpreted into a Node on load.
type Record struct {
	ID              string           `json:"id" yaml:"id" validate:"required,max=128"`
	Gate            string           `json:"logic_gate,omitempty" yaml:"logic_gate,omitempty" validate:"omitempty,oneof=AND OR"`
	Potential       *AttackPotential `json:"attack_potential,omitempty" yaml:"attack_potential,omitempty"`
	Children        []string         `json:"children,omitempty" yaml:"children,omitempty" validate:"dive,required"`
	Tags            []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	RequiredConfigs []string         `json:"required_toe_configuration_ids,omitempty" yaml:"required_toe_configuration_ids,omitempty"`
}

// rootKindFromTags returns the root kind encoded in the tag set, or 0 when
// the record is not a root.
func rootKindFromTags(tags []string) RootKind {
	for _, tag := range tags {
		switch tag {
		case TagAttackRoot:
			return RootAttack
		case TagCircumventRoot:
			return RootCircumvent
		case TagTechnicalRoot:
			return RootTechnical
		}
	}
	return 0
}

// NodeFromRecord reinterprets a flat record into a typed node. A record is a
// leaf iff it carries no gate and no root tag.
func NodeFromRecord(rec Record) (*Node, error) {
	gate, err := ParseGateKind(rec.Gate)
	if err != nil {
		return nil, err
	}

	node := &Node{
		ID:              rec.ID,
		Gate:            gate,
		Children:        append([]string(nil), rec.Children...),
		RequiredConfigs: append([]string(nil), rec.RequiredConfigs...),
	}

	switch root := rootKindFromTags(rec.Tags); {
	case root != 0:
		node.Kind = KindRoot
		node.Root = root
	case gate != GateUnset:
		node.Kind = KindGate
	default:
		node.Kind = KindLeaf
		if rec.Potential != nil {
			p := *rec.Potential
			node.Potential = &p
		}
	}

	if node.Kind != KindLeaf && rec.Potential != nil {
		return nil, fmt.Errorf("record %q: non-leaf carries attack potential: %w", rec.ID, ErrInvalidNode)
	}
	if err := node.Validate(); err != nil {
		return nil, err
	}
	return node, nil
}

// ToRecord converts a node back to its flat persisted form.
func (n *Node) ToRecord() Record {
	rec := Record{
		ID:              n.ID,
		Gate:            n.Gate.String(),
		Children:        append([]string(nil), n.Children...),
		RequiredConfigs: append([]string(nil), n.RequiredConfigs...),
	}
	if n.Potential != nil {
		p := *n.Potential
		rec.Potential = &p
	}
	if n.Kind == KindRoot {
		switch n.Root {
		case RootAttack:
			rec.Tags = []string{TagAttackRoot}
		case RootCircumvent:
			rec.Tags = []string{TagCircumventRoot}
		case RootTechnical:
			rec.Tags = []string{TagTechnicalRoot}
		}
	}
	return rec
}
