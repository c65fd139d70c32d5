package graph

import "sort"

// ToeConfiguration is a named, independently toggle-able deployment variant.
// Nodes referencing an inactive configuration are pruned during evaluation.
type ToeConfiguration struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Active bool   `json:"active" yaml:"active"`
}

// ConfigSet is the set of configuration IDs active for one evaluation.
type ConfigSet map[string]struct{}

// NewConfigSet builds the active set from a configuration list.
func NewConfigSet(configs []ToeConfiguration) ConfigSet {
	set := make(ConfigSet, len(configs))
	for _, c := range configs {
		if c.Active {
			set[c.ID] = struct{}{}
		}
	}
	return set
}

// AllActive reports whether every listed configuration ID is active. An empty
// list means the node is always reachable.
func (s ConfigSet) AllActive(ids []string) bool {
	for _, id := range ids {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}

// SortedIDs returns the active IDs in lexical order, for deterministic
// hashing of the set.
func (s ConfigSet) SortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
