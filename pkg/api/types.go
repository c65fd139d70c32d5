package api

import (
	"time"

	"github.com/taraforge/attacktree/pkg/feasibility"
	"github.com/taraforge/attacktree/pkg/graph"
	"github.com/taraforge/attacktree/pkg/health"
)

// EvaluateRequest selects a root and evaluation mode.
type EvaluateRequest struct {
	RootID                  string `json:"root_id"`
	IncludeReusableSubtrees bool   `json:"include_reusable_subtrees"`
}

// TreeResult is the evaluated outcome for one root. Absent ("result": null)
// means no attack path exists under the current graph, mode, and
// configuration set; that is a displayable state, not an error.
type TreeResult struct {
	Potential     graph.AttackPotential `json:"potential"`
	Score         int                   `json:"score"`
	Rating        feasibility.Rating    `json:"rating"`
	CriticalPaths [][]string            `json:"critical_paths"`
}

// EvaluateResponse wraps one evaluation.
type EvaluateResponse struct {
	EvaluationID string      `json:"evaluation_id"`
	RootID       string      `json:"root_id"`
	Mode         string      `json:"mode"`
	GraphVersion uint64      `json:"graph_version"`
	Result       *TreeResult `json:"result"`
}

// LinkValidateResponse reports whether a proposed edge is legal and, when it
// is, the gate the parent ends up with.
type LinkValidateResponse struct {
	Allowed        bool   `json:"allowed"`
	GateAssignment string `json:"gate_assignment,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// LinkResponse reports an applied edge mutation.
type LinkResponse struct {
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	ParentGate   string `json:"parent_gate,omitempty"`
	GraphVersion uint64 `json:"graph_version"`
}

// ClassificationResponse answers subtree membership for one node.
type ClassificationResponse struct {
	NodeID               string `json:"node_id"`
	CircumventMember     bool   `json:"circumvent_member"`
	TechnicalMember      bool   `json:"technical_member"`
	OwningCircumventRoot string `json:"owning_circumvent_root,omitempty"`
	OwningTechnicalRoot  string `json:"owning_technical_root,omitempty"`
}

// ConfigurationRequest toggles a TOE configuration.
type ConfigurationRequest struct {
	Active bool `json:"active"`
}

// RatingResponse maps a score through the feasibility policy.
type RatingResponse struct {
	Score  int                `json:"score"`
	Rating feasibility.Rating `json:"rating"`
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status    health.Status                 `json:"status"`
	Timestamp time.Time                     `json:"timestamp"`
	Version   string                        `json:"version"`
	Uptime    string                        `json:"uptime"`
	Checks    map[string]health.CheckResult `json:"checks"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
