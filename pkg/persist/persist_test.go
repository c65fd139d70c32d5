package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taraforge/attacktree/pkg/graph"
)

func sampleGraph(t *testing.T) (*graph.Graph, []graph.ToeConfiguration) {
	t.Helper()
	g, err := graph.NewGraph([]*graph.Node{
		graph.NewRoot("root", graph.RootAttack, graph.GateAnd, "or1"),
		graph.NewGate("or1", graph.GateOr, "easy", "hard"),
		graph.NewLeaf("easy", graph.AttackPotential{Time: 1, Expertise: 2}, "cfg-lidar"),
		graph.NewLeaf("hard", graph.AttackPotential{Time: 10, Expertise: 6}),
	})
	require.NoError(t, err)
	return g, []graph.ToeConfiguration{{ID: "cfg-lidar", Active: true}}
}

// TestFormatFor tests extension-based format selection
func TestFormatFor(t *testing.T) {
	cases := map[string]Format{
		"tree.yaml":       FormatYAML,
		"tree.yml":        FormatYAML,
		"TREE.JSON":       FormatJSON,
		"snapshot.snappy": FormatSnappy,
	}
	for path, want := range cases {
		got, err := FormatFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFor("tree.xml")
	assert.Error(t, err)
}

// TestSaveLoad_RoundTrip tests full file round trips in every format
func TestSaveLoad_RoundTrip(t *testing.T) {
	original, configs := sampleGraph(t)
	dir := t.TempDir()

	for _, name := range []string{"tree.yaml", "tree.json", "tree.snappy"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, original, configs), name)

		loaded, loadedConfigs, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, original.Nodes(), loaded.Nodes(), name)
		assert.Equal(t, configs, loadedConfigs, name)
	}
}

// TestDecode_RejectsBadRecords tests that structural problems surface as
// decode errors, not as half-built graphs
func TestDecode_RejectsBadRecords(t *testing.T) {
	cases := map[string]string{
		"duplicate id": `nodes:
  - id: a
    attack_potential: {time: 1}
  - id: a
    attack_potential: {time: 2}
`,
		"dangling child": `nodes:
  - id: gate
    logic_gate: AND
    children: [missing]
`,
		"potential on gate": `nodes:
  - id: gate
    logic_gate: AND
    attack_potential: {time: 1}
`,
		"unknown gate": `nodes:
  - id: gate
    logic_gate: XOR
`,
	}
	for name, doc := range cases {
		_, _, err := Decode([]byte(doc), FormatYAML)
		assert.Error(t, err, name)
	}
}

// TestDecode_MalformedInput tests parse failures per format
func TestDecode_MalformedInput(t *testing.T) {
	_, _, err := Decode([]byte("{not json"), FormatJSON)
	assert.Error(t, err)

	_, _, err = Decode([]byte("\x00\x01garbage"), FormatSnappy)
	assert.Error(t, err)
}

// TestLoad_MissingFile tests the filesystem error path
func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
