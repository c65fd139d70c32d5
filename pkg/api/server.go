// Package api is the REST adapter the authoring layer talks to: evaluation,
// link validation and mutation, subtree classification, configuration
// toggles, health, and metrics.
package api

import (
	"net/http"
	"time"

	"github.com/taraforge/attacktree/pkg/engine"
	"github.com/taraforge/attacktree/pkg/feasibility"
	"github.com/taraforge/attacktree/pkg/graph"
	"github.com/taraforge/attacktree/pkg/health"
	"github.com/taraforge/attacktree/pkg/logging"
	"github.com/taraforge/attacktree/pkg/telemetry"
	"github.com/taraforge/attacktree/pkg/topology"
)

// Server serves the engine over HTTP. Mutations go through the store's
// single-writer lock; evaluations read immutable snapshots and may run
// concurrently.
type Server struct {
	store     *graph.Store
	validator topology.Validator
	cache     *engine.Cache
	policy    feasibility.Policy
	limits    engine.Limits
	log       logging.Logger
	metrics   *telemetry.Registry
	checker   *health.Checker
	version   string
	startTime time.Time
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger attaches a structured logger.
func WithLogger(log logging.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// WithPolicy overrides the feasibility rating policy.
func WithPolicy(p feasibility.Policy) ServerOption {
	return func(s *Server) { s.policy = p }
}

// WithLimits overrides the evaluation ceilings.
func WithLimits(l engine.Limits) ServerOption {
	return func(s *Server) { s.limits = l }
}

// WithTelemetry attaches a metrics registry.
func WithTelemetry(m *telemetry.Registry) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithVersion sets the version string reported by the health endpoint.
func WithVersion(v string) ServerOption {
	return func(s *Server) { s.version = v }
}

// NewServer wires the REST adapter around a graph store.
func NewServer(store *graph.Store, opts ...ServerOption) *Server {
	s := &Server{
		store:     store,
		validator: topology.NewValidator(),
		cache:     engine.NewCache(),
		policy:    feasibility.DefaultPolicy(),
		limits:    engine.DefaultLimits(),
		log:       logging.NewNopLogger(),
		checker:   health.NewChecker(),
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.checker.Register("graph", s.checkGraph)
	s.checker.Register("evaluator", s.checkEvaluator)
	return s
}

// Handler builds the routing table wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/links/validate", s.handleLinkValidate)
	mux.HandleFunc("/links", s.handleLinks)
	mux.HandleFunc("/nodes/", s.handleNode) // /nodes/{id}/classification
	mux.HandleFunc("/configurations/", s.handleConfiguration)
	mux.HandleFunc("/ratings", s.handleRating)

	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	return s.withRequestID(s.withRequestLogging(mux))
}

// checkGraph reports whether a non-empty graph snapshot is loaded.
func (s *Server) checkGraph() health.CheckResult {
	g, _ := s.store.Snapshot()
	if g == nil || g.Len() == 0 {
		return health.Unhealthy("no graph loaded")
	}
	return health.Healthy("")
}

// checkEvaluator smoke-tests evaluation against the first attack root, if any.
func (s *Server) checkEvaluator() health.CheckResult {
	g, _ := s.store.Snapshot()
	if g == nil {
		return health.Unhealthy("no graph loaded")
	}
	roots := g.Roots(graph.RootAttack)
	if len(roots) == 0 {
		return health.Healthy("no attack roots to evaluate")
	}
	ev := engine.NewEvaluator(g, s.store.ActiveConfigs(), feasibility.Score, engine.WithLimits(s.limits))
	if _, err := ev.Evaluate(roots[0].ID, false); err != nil {
		return health.Unhealthy(err.Error())
	}
	return health.Healthy("")
}
