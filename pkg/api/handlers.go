package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taraforge/attacktree/pkg/engine"
	"github.com/taraforge/attacktree/pkg/feasibility"
	"github.com/taraforge/attacktree/pkg/graph"
	"github.com/taraforge/attacktree/pkg/logging"
	"github.com/taraforge/attacktree/pkg/subtree"
	"github.com/taraforge/attacktree/pkg/topology"
	"github.com/taraforge/attacktree/pkg/validation"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report := s.checker.Check()
	status := http.StatusOK
	if report.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, HealthResponse{
		Status:    report.Status,
		Timestamp: report.Timestamp,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Checks:    report.Checks,
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req EvaluateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.RootID == "" {
		s.respondError(w, http.StatusBadRequest, "root_id is required")
		return
	}

	g, version := s.store.Snapshot()
	configs := s.store.ActiveConfigs()
	if s.metrics != nil {
		s.metrics.SetGraphStats(g.Len(), version)
	}

	key := engine.Key(req.RootID, req.IncludeReusableSubtrees, configs, version)
	result, cached := s.cache.Get(key)
	if !cached {
		opts := []engine.Option{engine.WithLimits(s.limits), engine.WithLogger(s.log)}
		if s.metrics != nil {
			opts = append(opts, engine.WithRecorder(s.metrics))
		}
		ev := engine.NewEvaluator(g, configs, feasibility.Score, opts...)

		var err error
		result, err = ev.Evaluate(req.RootID, req.IncludeReusableSubtrees)
		if err != nil {
			if errors.Is(err, engine.ErrUnknownRoot) {
				s.respondError(w, http.StatusNotFound, err.Error())
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.cache.Put(key, result)
	}

	resp := EvaluateResponse{
		EvaluationID: uuid.NewString(),
		RootID:       req.RootID,
		Mode:         modeName(req.IncludeReusableSubtrees),
		GraphVersion: version,
	}
	if result != nil {
		resp.Result = &TreeResult{
			Potential:     result.Potential,
			Score:         result.Score,
			Rating:        s.policy.RatingOf(result.Score),
			CriticalPaths: result.CriticalPaths,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLinkValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, ok := s.decodeLinkRequest(w, r)
	if !ok {
		return
	}

	g, _ := s.store.Snapshot()
	gate, _, err := s.validator.CheckLink(g, req.SourceID, req.TargetID)
	if err != nil {
		reason := topology.ReasonOf(err)
		if s.metrics != nil {
			s.metrics.RecordLinkRejection(reason)
		}
		s.respondJSON(w, http.StatusOK, LinkValidateResponse{Allowed: false, Reason: reason})
		return
	}
	if s.metrics != nil {
		s.metrics.RecordLinkCheck()
	}
	s.respondJSON(w, http.StatusOK, LinkValidateResponse{Allowed: true, GateAssignment: gate.String()})
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleLinkCreate(w, r)
	case http.MethodDelete:
		s.handleLinkDelete(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleLinkCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeLinkRequest(w, r)
	if !ok {
		return
	}

	gate, err := s.store.Link(req.SourceID, req.TargetID)
	if err != nil {
		reason := topology.ReasonOf(err)
		if s.metrics != nil {
			s.metrics.RecordLinkRejection(reason)
		}
		switch {
		case errors.Is(err, graph.ErrNodeNotFound), errors.Is(err, topology.ErrNodeNotFound):
			s.respondReasonError(w, http.StatusNotFound, err.Error(), reason)
		case reason != "" || errors.Is(err, graph.ErrLeafParent):
			s.respondReasonError(w, http.StatusConflict, err.Error(), reason)
		default:
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if s.metrics != nil {
		s.metrics.RecordLinkCheck()
	}
	_, version := s.store.Snapshot()
	s.log.Info("link applied",
		logging.String("source_id", req.SourceID),
		logging.String("target_id", req.TargetID),
		logging.String("parent_gate", gate.String()))
	s.respondJSON(w, http.StatusCreated, LinkResponse{
		SourceID:     req.SourceID,
		TargetID:     req.TargetID,
		ParentGate:   gate.String(),
		GraphVersion: version,
	})
}

func (s *Server) handleLinkDelete(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeLinkRequest(w, r)
	if !ok {
		return
	}

	if err := s.store.Unlink(req.SourceID, req.TargetID); err != nil {
		switch {
		case errors.Is(err, graph.ErrNodeNotFound), errors.Is(err, graph.ErrEdgeNotFound):
			s.respondError(w, http.StatusNotFound, err.Error())
		default:
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	_, version := s.store.Snapshot()
	s.respondJSON(w, http.StatusOK, LinkResponse{
		SourceID:     req.SourceID,
		TargetID:     req.TargetID,
		GraphVersion: version,
	})
}

// handleNode serves /nodes/{id}/classification.
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/nodes/")
	nodeID, action, found := strings.Cut(rest, "/")
	if !found || action != "classification" || nodeID == "" {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}

	g, _ := s.store.Snapshot()
	if _, ok := g.Node(nodeID); !ok {
		s.respondError(w, http.StatusNotFound, "node not found")
		return
	}

	classifier := subtree.NewClassifier(g)
	resp := ClassificationResponse{NodeID: nodeID}
	resp.OwningCircumventRoot, resp.CircumventMember = classifier.OwningCircumventRoot(nodeID)
	resp.OwningTechnicalRoot, resp.TechnicalMember = classifier.OwningTechnicalRoot(nodeID)
	s.respondJSON(w, http.StatusOK, resp)
}

// handleConfiguration serves PUT /configurations/{id}.
func (s *Server) handleConfiguration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	configID := strings.TrimPrefix(r.URL.Path, "/configurations/")
	if configID == "" || strings.Contains(configID, "/") {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}

	var req ConfigurationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := s.store.SetConfigActive(configID, req.Active); err != nil {
		if errors.Is(err, graph.ErrConfigNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, graph.ToeConfiguration{ID: configID, Active: req.Active})
}

// handleRating serves GET /ratings?score=N.
func (s *Server) handleRating(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "score must be an integer")
		return
	}
	s.respondJSON(w, http.StatusOK, RatingResponse{Score: score, Rating: s.policy.RatingOf(score)})
}

func (s *Server) decodeLinkRequest(w http.ResponseWriter, r *http.Request) (*validation.LinkRequest, bool) {
	var req validation.LinkRequest
	if !s.decodeJSON(w, r, &req) {
		return nil, false
	}
	if err := validation.ValidateLinkRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

func modeName(includeReusable bool) string {
	if includeReusable {
		return "residual"
	}
	return "initial"
}
