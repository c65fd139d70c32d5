// Package engine implements the bottom-up attack potential propagation over
// an attack-tree graph: AND gates compound cost, OR gates minimize it, and
// the critical (cheapest, necessary) root-to-leaf paths are enumerated with
// ties preserved.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/taraforge/attacktree/pkg/graph"
	"github.com/taraforge/attacktree/pkg/logging"
)

// ErrUnknownRoot is returned when Evaluate is called with an absent root ID.
// Unlike structural non-findings inside the recursion, this indicates a
// caller bug and fails fast.
var ErrUnknownRoot = errors.New("unknown root node")

// ScoreFunc derives the scalar attack potential from a tuple. The standard
// function is feasibility.Score (sum of the five fields); it is injected so
// the engine carries no rating policy of its own.
type ScoreFunc func(graph.AttackPotential) int

// Limits bounds one evaluation. Exceeding a ceiling fails closed: the branch
// collapses to "no result" instead of exhausting memory on adversarial input.
type Limits struct {
	MaxDepth int `json:"max_depth" yaml:"max_depth" validate:"gt=0"`
	MaxPaths int `json:"max_paths" yaml:"max_paths" validate:"gt=0"`
}

// DefaultLimits are generous for human-authored trees.
func DefaultLimits() Limits {
	return Limits{MaxDepth: 512, MaxPaths: 10000}
}

// Result is the outcome of evaluating one root: the aggregate potential
// tuple, its scalar score, and every critical root-to-leaf path. A nil
// *Result means "no known attack path", which is a valid displayable state,
// not an error.
type Result struct {
	Potential     graph.AttackPotential `json:"potential"`
	Score         int                   `json:"score"`
	CriticalPaths [][]string            `json:"critical_paths"`
}

// Recorder receives evaluation telemetry. Implemented by telemetry.Registry.
type Recorder interface {
	RecordEvaluation(mode, status string, duration time.Duration, pathCount int)
}

// Evaluator runs propagation over one graph snapshot and one active
// configuration set. It is a pure function of its inputs: each Evaluate call
// owns a fresh memo table and visiting set, so concurrent calls on the same
// snapshot are safe.
type Evaluator struct {
	graph    *graph.Graph
	configs  graph.ConfigSet
	score    ScoreFunc
	limits   Limits
	log      logging.Logger
	recorder Recorder
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLimits overrides the default evaluation ceilings.
func WithLimits(l Limits) Option {
	return func(e *Evaluator) { e.limits = l }
}

// WithLogger attaches a structured logger.
func WithLogger(log logging.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// WithRecorder attaches evaluation telemetry.
func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) { e.recorder = r }
}

// NewEvaluator creates an evaluator over a graph snapshot. The score function
// is mandatory; it defines OR-minimization and the reported scores.
func NewEvaluator(g *graph.Graph, configs graph.ConfigSet, score ScoreFunc, opts ...Option) *Evaluator {
	e := &Evaluator{
		graph:   g,
		configs: configs,
		score:   score,
		limits:  DefaultLimits(),
		log:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// evalState is the per-call arena: memo and visiting set live exactly as long
// as one Evaluate call, so results never leak across modes or config sets.
type evalState struct {
	memo            map[string]*Result
	visiting        map[string]struct{}
	includeReusable bool
	truncated       bool
}

// Evaluate computes the aggregate attack potential and critical paths for
// rootID. With includeReusableSubtrees false ("initial" mode), circumvent
// roots and everything reachable only through them are excluded as if those
// edges did not exist; technical subtrees always remain included. A nil
// Result with nil error means no attack path exists under the current graph,
// mode, and configuration set.
func (e *Evaluator) Evaluate(rootID string, includeReusableSubtrees bool) (*Result, error) {
	if _, ok := e.graph.Node(rootID); !ok {
		return nil, fmt.Errorf("evaluate %q: %w", rootID, ErrUnknownRoot)
	}

	start := time.Now()
	st := &evalState{
		memo:            make(map[string]*Result),
		visiting:        make(map[string]struct{}),
		includeReusable: includeReusableSubtrees,
	}
	res := e.eval(rootID, st, 0)

	e.report(rootID, includeReusableSubtrees, res, st, time.Since(start))
	return res, nil
}

func (e *Evaluator) report(rootID string, includeReusable bool, res *Result, st *evalState, elapsed time.Duration) {
	status := "empty"
	paths := 0
	if res != nil {
		status = "result"
		paths = len(res.CriticalPaths)
	}
	if st.truncated {
		status = "truncated"
		e.log.Warn("evaluation hit ceiling, failing closed",
			logging.RootID(rootID), logging.Mode(includeReusable))
	}
	if e.recorder != nil {
		mode := "initial"
		if includeReusable {
			mode = "residual"
		}
		e.recorder.RecordEvaluation(mode, status, elapsed, paths)
	}
	e.log.Debug("evaluation finished",
		logging.RootID(rootID), logging.Mode(includeReusable),
		logging.String("status", status), logging.PathCount(paths), logging.Latency(elapsed))
}

// eval is the recursive core. A nil return is "no result": the branch cannot
// currently be completed by an attacker (missing node, pruned configuration,
// cycle, empty gate, or ceiling hit).
func (e *Evaluator) eval(id string, st *evalState, depth int) *Result {
	if depth > e.limits.MaxDepth {
		st.truncated = true
		return nil
	}

	node, ok := e.graph.Node(id)
	if !ok {
		return nil
	}

	// Configuration pruning: a node referencing any inactive configuration
	// is absent for this evaluation, children not consulted.
	if !e.configs.AllActive(node.RequiredConfigs) {
		return nil
	}

	// Cycle guard: a node already on the current call stack is an
	// unsatisfiable branch, never an infinite recursion.
	if _, ok := st.visiting[id]; ok {
		return nil
	}

	if cached, ok := st.memo[id]; ok {
		return cached
	}

	st.visiting[id] = struct{}{}
	defer delete(st.visiting, id)

	var res *Result
	if node.Kind == graph.KindLeaf {
		res = e.evalLeaf(node)
	} else {
		res = e.evalGate(node, st, depth)
	}

	st.memo[id] = res
	return res
}

func (e *Evaluator) evalLeaf(node *graph.Node) *Result {
	if node.Potential == nil {
		return nil
	}
	pot := *node.Potential
	return &Result{
		Potential:     pot,
		Score:         e.score(pot),
		CriticalPaths: [][]string{{node.ID}},
	}
}

func (e *Evaluator) evalGate(node *graph.Node, st *evalState, depth int) *Result {
	children := e.liveChildren(node, st)
	if len(children) == 0 {
		return nil
	}
	switch node.EffectiveGate() {
	case graph.GateOr:
		return e.combineOr(node, children, st, depth)
	default:
		return e.combineAnd(node, children, st, depth)
	}
}

// liveChildren returns the child IDs this evaluation follows, in stored
// order. Initial mode removes edges into circumvent roots entirely; this is
// different from configuration pruning, which yields "no result" and poisons
// AND parents.
func (e *Evaluator) liveChildren(node *graph.Node, st *evalState) []string {
	if st.includeReusable {
		return node.Children
	}
	live := make([]string, 0, len(node.Children))
	for _, cid := range node.Children {
		if child, ok := e.graph.Node(cid); ok && child.IsCircumventRoot() {
			continue
		}
		live = append(live, cid)
	}
	return live
}

// combineAnd folds all children: every conjunct must be achievable, the
// tuple is the field-wise maximum, and the critical paths are the Cartesian
// product of the children's paths prefixed with this node. The product can
// grow exponentially on deeply nested AND-of-tied-OR trees; MaxPaths fails
// the branch closed rather than exhausting memory.
func (e *Evaluator) combineAnd(node *graph.Node, children []string, st *evalState, depth int) *Result {
	results := make([]*Result, len(children))
	for i, cid := range children {
		r := e.eval(cid, st, depth+1)
		if r == nil {
			return nil
		}
		results[i] = r
	}

	pot := results[0].Potential
	for _, r := range results[1:] {
		pot = pot.Max(r.Potential)
	}

	paths := [][]string{{node.ID}}
	for _, r := range results {
		if len(paths)*len(r.CriticalPaths) > e.limits.MaxPaths {
			st.truncated = true
			return nil
		}
		next := make([][]string, 0, len(paths)*len(r.CriticalPaths))
		for _, prefix := range paths {
			for _, cp := range r.CriticalPaths {
				combined := make([]string, 0, len(prefix)+len(cp))
				combined = append(combined, prefix...)
				combined = append(combined, cp...)
				next = append(next, combined)
			}
		}
		paths = next
	}

	return &Result{Potential: pot, Score: e.score(pot), CriticalPaths: paths}
}

// combineOr keeps the surviving children, takes the field-wise minimum tuple
// across them, and selects every child whose scalar score ties the minimum.
// The field-wise minimum can synthesize a tuple matching no single child;
// that is the domain's literal rule and is preserved as-is. All ties are
// kept so the caller can highlight every equally-critical route.
func (e *Evaluator) combineOr(node *graph.Node, children []string, st *evalState, depth int) *Result {
	surviving := make([]*Result, 0, len(children))
	for _, cid := range children {
		if r := e.eval(cid, st, depth+1); r != nil {
			surviving = append(surviving, r)
		}
	}
	if len(surviving) == 0 {
		return nil
	}

	pot := surviving[0].Potential
	minScore := surviving[0].Score
	for _, r := range surviving[1:] {
		pot = pot.Min(r.Potential)
		if r.Score < minScore {
			minScore = r.Score
		}
	}

	var paths [][]string
	for _, r := range surviving {
		if r.Score != minScore {
			continue
		}
		for _, cp := range r.CriticalPaths {
			if len(paths) >= e.limits.MaxPaths {
				st.truncated = true
				return nil
			}
			prefixed := make([]string, 0, len(cp)+1)
			prefixed = append(prefixed, node.ID)
			prefixed = append(prefixed, cp...)
			paths = append(paths, prefixed)
		}
	}

	return &Result{Potential: pot, Score: e.score(pot), CriticalPaths: paths}
}
