package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taraforge/attacktree/pkg/graph"
	"github.com/taraforge/attacktree/pkg/topology"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	g, err := graph.NewGraph([]*graph.Node{
		graph.NewRoot("root", graph.RootAttack, graph.GateOr, "easy", "hard"),
		graph.NewLeaf("easy", graph.AttackPotential{Time: 1, Expertise: 2}),
		graph.NewLeaf("hard", graph.AttackPotential{Time: 10, Expertise: 15}),
		graph.NewRoot("bypass", graph.RootCircumvent, graph.GateAnd, "pick"),
		graph.NewLeaf("pick", graph.AttackPotential{Time: 3}),
		graph.NewGate("and-parent", graph.GateAnd, "easy"),
		graph.NewGate("or-parent", graph.GateOr, "easy"),
	})
	require.NoError(t, err)

	store := graph.NewStore(g, []graph.ToeConfiguration{{ID: "cfg", Active: true}}, topology.NewValidator())
	return NewServer(store)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestHandleEvaluate tests the evaluation endpoint happy path
func TestHandleEvaluate(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/evaluate", EvaluateRequest{RootID: "root"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "root", resp.RootID)
	assert.Equal(t, "initial", resp.Mode)
	assert.NotEmpty(t, resp.EvaluationID)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 3, resp.Result.Score)
	assert.Equal(t, [][]string{{"root", "easy"}}, resp.Result.CriticalPaths)
	assert.Equal(t, "HIGH", string(resp.Result.Rating))
}

// TestHandleEvaluate_UnknownRoot tests the 404 on a missing root id
func TestHandleEvaluate_UnknownRoot(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/evaluate", EvaluateRequest{RootID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandleEvaluate_Validation tests malformed evaluation requests
func TestHandleEvaluate_Validation(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/evaluate", EvaluateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", bytes.NewBufferString("{bad"))
	raw := httptest.NewRecorder()
	h.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec = doJSON(t, h, http.MethodGet, "/evaluate", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestHandleLinkValidate tests the dry-run link check in both outcomes
func TestHandleLinkValidate(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/links/validate", map[string]string{
		"source_id": "and-parent", "target_id": "hard",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LinkValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)

	// OR parent with a non-circumvent child cannot adopt a circumvent root.
	rec = doJSON(t, h, http.MethodPost, "/links/validate", map[string]string{
		"source_id": "or-parent", "target_id": "bypass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)
	assert.Equal(t, topology.ReasonIllegalCircumventAttachment, resp.Reason)
}

// TestHandleLinkCreate tests edge creation and cyclic rejection
func TestHandleLinkCreate(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	rec := doJSON(t, h, http.MethodPost, "/links", map[string]string{
		"source_id": "and-parent", "target_id": "hard",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp LinkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AND", resp.ParentGate)
	assert.Equal(t, uint64(1), resp.GraphVersion)

	// A self edge is a cycle and must be rejected with a reason code.
	rec = doJSON(t, h, http.MethodPost, "/links", map[string]string{
		"source_id": "and-parent", "target_id": "and-parent",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, topology.ReasonWouldCreateCycle, errResp.Reason)

	// Missing endpoints map to 404.
	rec = doJSON(t, h, http.MethodPost, "/links", map[string]string{
		"source_id": "and-parent", "target_id": "ghost",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A leaf cannot become a parent.
	rec = doJSON(t, h, http.MethodPost, "/links", map[string]string{
		"source_id": "easy", "target_id": "hard",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestHandleLinkDelete tests edge removal
func TestHandleLinkDelete(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodDelete, "/links", map[string]string{
		"source_id": "root", "target_id": "hard",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodDelete, "/links", map[string]string{
		"source_id": "root", "target_id": "hard",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandleClassification tests the node classification endpoint
func TestHandleClassification(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodGet, "/nodes/pick/classification", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ClassificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.CircumventMember)
	assert.Equal(t, "bypass", resp.OwningCircumventRoot)
	assert.False(t, resp.TechnicalMember)

	rec = doJSON(t, h, http.MethodGet, "/nodes/ghost/classification", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/nodes/pick", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandleConfiguration tests toggling a TOE configuration
func TestHandleConfiguration(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	rec := doJSON(t, h, http.MethodPut, "/configurations/cfg", ConfigurationRequest{Active: false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp graph.ToeConfiguration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cfg", resp.ID)
	assert.False(t, resp.Active)

	rec = doJSON(t, h, http.MethodPut, "/configurations/ghost", ConfigurationRequest{Active: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandleRating tests the score-to-rating endpoint
func TestHandleRating(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodGet, "/ratings?score=13", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp RatingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "HIGH", string(resp.Rating))

	rec = doJSON(t, h, http.MethodGet, "/ratings?score=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestHandleHealth tests the health endpoint with a loaded graph
func TestHandleHealth(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", string(resp.Status))
	assert.Contains(t, resp.Checks, "graph")
	assert.Contains(t, resp.Checks, "evaluator")
}

// TestRequestIDPropagation tests that an incoming request id is echoed and a
// missing one is generated
func TestRequestIDPropagation(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = doJSON(t, h, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
