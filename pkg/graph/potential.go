package graph

// AttackPotential is the five-field effort tuple quantifying the cost of
// performing an attack step, per ISO/SAE 21434-style scoring. Higher values
// mean the step is harder for the attacker.
type AttackPotential struct {
	Time      int `json:"time" yaml:"time" validate:"gte=0"`
	Expertise int `json:"expertise" yaml:"expertise" validate:"gte=0"`
	Knowledge int `json:"knowledge" yaml:"knowledge" validate:"gte=0"`
	Access    int `json:"access" yaml:"access" validate:"gte=0"`
	Equipment int `json:"equipment" yaml:"equipment" validate:"gte=0"`
}

// Max returns the field-wise maximum of p and q. This is the AND-gate
// combinator: an attacker performing every conjunct pays the worst-case cost
// in each dimension.
func (p AttackPotential) Max(q AttackPotential) AttackPotential {
	return AttackPotential{
		Time:      max(p.Time, q.Time),
		Expertise: max(p.Expertise, q.Expertise),
		Knowledge: max(p.Knowledge, q.Knowledge),
		Access:    max(p.Access, q.Access),
		Equipment: max(p.Equipment, q.Equipment),
	}
}

// Min returns the field-wise minimum of p and q. This is the OR-gate
// combinator: per dimension, the attacker is assumed to take the cheapest
// observed value. The result can be a synthetic tuple matching no single
// child; that is the domain's literal combination rule.
func (p AttackPotential) Min(q AttackPotential) AttackPotential {
	return AttackPotential{
		Time:      min(p.Time, q.Time),
		Expertise: min(p.Expertise, q.Expertise),
		Knowledge: min(p.Knowledge, q.Knowledge),
		Access:    min(p.Access, q.Access),
		Equipment: min(p.Equipment, q.Equipment),
	}
}
