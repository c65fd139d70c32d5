// Package feasibility converts attack potential tuples into scalar scores and
// ordinal feasibility ratings. The propagation engine depends only on Score;
// the rating table is an injectable presentation policy of the caller.
package feasibility

import (
	"fmt"
	"sort"

	"github.com/taraforge/attacktree/pkg/graph"
)

// Rating is an ordinal attack-feasibility label.
type Rating string

const (
	RatingHigh    Rating = "HIGH"
	RatingMedium  Rating = "MEDIUM"
	RatingLow     Rating = "LOW"
	RatingVeryLow Rating = "VERY_LOW"
)

// Score is the scalar attack potential of a tuple: the sum of its five
// fields. Lower scores mean an easier attack.
func Score(p graph.AttackPotential) int {
	return p.Time + p.Expertise + p.Knowledge + p.Access + p.Equipment
}

// Threshold maps scores strictly below Below to a rating.
type Threshold struct {
	Below  int    `json:"below" yaml:"below" validate:"gt=0"`
	Rating Rating `json:"rating" yaml:"rating" validate:"required"`
}

// Policy is a monotonic step function from numeric score to rating. The exact
// cutoffs belong to the host's rating table; construct a Policy from it
// rather than relying on the default.
type Policy struct {
	thresholds []Threshold
	fallback   Rating
}

// NewPolicy builds a policy from threshold steps and the rating applied to
// scores at or above every cutoff. Thresholds are sorted by cutoff; ratings
// must descend as scores grow, matching "higher effort, lower feasibility".
func NewPolicy(thresholds []Threshold, fallback Rating) (Policy, error) {
	if len(thresholds) == 0 {
		return Policy{}, fmt.Errorf("feasibility policy needs at least one threshold")
	}
	sorted := append([]Threshold(nil), thresholds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Below < sorted[j].Below })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Below == sorted[i-1].Below {
			return Policy{}, fmt.Errorf("feasibility policy has duplicate cutoff %d", sorted[i].Below)
		}
	}
	return Policy{thresholds: sorted, fallback: fallback}, nil
}

// DefaultPolicy returns the standard rating table: scores under 14 rate HIGH
// feasibility, under 20 MEDIUM, under 25 LOW, and VERY_LOW beyond.
func DefaultPolicy() Policy {
	p, _ := NewPolicy([]Threshold{
		{Below: 14, Rating: RatingHigh},
		{Below: 20, Rating: RatingMedium},
		{Below: 25, Rating: RatingLow},
	}, RatingVeryLow)
	return p
}

// RatingOf maps a scalar score to its ordinal rating.
func (p Policy) RatingOf(score int) Rating {
	for _, t := range p.thresholds {
		if score < t.Below {
			return t.Rating
		}
	}
	return p.fallback
}

// RateTuple scores a tuple and maps it in one step.
func (p Policy) RateTuple(pot graph.AttackPotential) (int, Rating) {
	score := Score(pot)
	return score, p.RatingOf(score)
}
