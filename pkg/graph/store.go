package graph

import (
	"fmt"
	"sync"
)

// LinkValidator checks a proposed source -> target edge against the topology
// rules and returns the gate the parent must end up with. assign is false
// when the parent's gate is untouched.
type LinkValidator interface {
	CheckLink(g *Graph, sourceID, targetID string) (gate GateKind, assign bool, err error)
}

// Store is the single-writer gate around a graph and its TOE configurations.
// Readers take immutable snapshots; mutations validate first, then apply
// copy-on-write under the lock and bump the version counter. A mutation is
// never partially applied.
type Store struct {
	mu        sync.RWMutex
	graph     *Graph
	configs   map[string]bool // id -> active
	configIDs []string        // insertion order
	version   uint64
	validator LinkValidator
}

// NewStore wraps a graph and configuration list. The validator is consulted
// before every Link; mutation without one is refused.
func NewStore(g *Graph, configs []ToeConfiguration, validator LinkValidator) *Store {
	s := &Store{
		graph:     g,
		configs:   make(map[string]bool, len(configs)),
		validator: validator,
	}
	for _, c := range configs {
		if _, dup := s.configs[c.ID]; !dup {
			s.configIDs = append(s.configIDs, c.ID)
		}
		s.configs[c.ID] = c.Active
	}
	return s
}

// Snapshot returns the current immutable graph and its version. Evaluations
// hold the snapshot for their whole run; concurrent mutations produce new
// graphs and never touch it.
func (s *Store) Snapshot() (*Graph, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph, s.version
}

// ActiveConfigs returns the currently active configuration set.
func (s *Store) ActiveConfigs() ConfigSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(ConfigSet, len(s.configs))
	for id, active := range s.configs {
		if active {
			set[id] = struct{}{}
		}
	}
	return set
}

// Configurations returns all configurations in insertion order.
func (s *Store) Configurations() []ToeConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ToeConfiguration, 0, len(s.configIDs))
	for _, id := range s.configIDs {
		out = append(out, ToeConfiguration{ID: id, Active: s.configs[id]})
	}
	return out
}

// Version returns the current mutation counter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Link adds a source -> target edge after topology validation. On success it
// returns the gate the parent carries after the mutation (the validator's
// assignment decision, applied here).
func (s *Store) Link(sourceID, targetID string) (GateKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.validator == nil {
		return GateUnset, fmt.Errorf("link %s -> %s: %w", sourceID, targetID, ErrLinkNotValidated)
	}

	source, ok := s.graph.Node(sourceID)
	if !ok {
		return GateUnset, fmt.Errorf("link source %q: %w", sourceID, ErrNodeNotFound)
	}
	if _, ok := s.graph.Node(targetID); !ok {
		return GateUnset, fmt.Errorf("link target %q: %w", targetID, ErrNodeNotFound)
	}
	if source.Kind == KindLeaf {
		return GateUnset, fmt.Errorf("link source %q: %w", sourceID, ErrLeafParent)
	}

	gate, assign, err := s.validator.CheckLink(s.graph, sourceID, targetID)
	if err != nil {
		return GateUnset, err
	}

	updated := source.clone()
	updated.Children = append(updated.Children, targetID)
	if assign {
		updated.Gate = gate
	}
	s.graph = s.graph.withNode(updated)
	s.version++
	return updated.Gate, nil
}

// Unlink removes a source -> target edge. Removing an edge cannot violate
// topology, so no validation beyond existence is needed.
func (s *Store) Unlink(sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.graph.Node(sourceID)
	if !ok {
		return fmt.Errorf("unlink source %q: %w", sourceID, ErrNodeNotFound)
	}
	idx := -1
	for i, cid := range source.Children {
		if cid == targetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unlink %s -> %s: %w", sourceID, targetID, ErrEdgeNotFound)
	}

	updated := source.clone()
	updated.Children = append(updated.Children[:idx], updated.Children[idx+1:]...)
	s.graph = s.graph.withNode(updated)
	s.version++
	return nil
}

// SetGate changes a non-leaf node's gate.
func (s *Store) SetGate(id string, gate GateKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.graph.Node(id)
	if !ok {
		return fmt.Errorf("set gate on %q: %w", id, ErrNodeNotFound)
	}
	if node.Kind == KindLeaf {
		return fmt.Errorf("set gate on leaf %q: %w", id, ErrInvalidNode)
	}

	updated := node.clone()
	updated.Gate = gate
	s.graph = s.graph.withNode(updated)
	s.version++
	return nil
}

// SetConfigActive toggles a TOE configuration.
func (s *Store) SetConfigActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[id]; !ok {
		return fmt.Errorf("configuration %q: %w", id, ErrConfigNotFound)
	}
	s.configs[id] = active
	s.version++
	return nil
}

// Replace swaps in a freshly loaded graph and configuration list, for config
// reloads. Bumps the version so caches keyed on it invalidate.
func (s *Store) Replace(g *Graph, configs []ToeConfiguration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = g
	s.configs = make(map[string]bool, len(configs))
	s.configIDs = s.configIDs[:0]
	for _, c := range configs {
		if _, dup := s.configs[c.ID]; !dup {
			s.configIDs = append(s.configIDs, c.ID)
		}
		s.configs[c.ID] = c.Active
	}
	s.version++
}
