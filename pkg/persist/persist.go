// Package persist loads and saves attack-tree files in the host's flat
// record format. YAML and JSON are selected by file extension; .snappy holds
// a snappy-compressed JSON snapshot.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"gopkg.in/yaml.v3"

	"github.com/taraforge/attacktree/pkg/graph"
	"github.com/taraforge/attacktree/pkg/validation"
)

// Format identifies a tree file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatSnappy
)

// TreeFile is the persisted shape of one project: flat node records plus the
// TOE configuration list.
type TreeFile struct {
	Nodes          []graph.Record           `json:"nodes" yaml:"nodes"`
	Configurations []graph.ToeConfiguration `json:"toe_configurations,omitempty" yaml:"toe_configurations,omitempty"`
}

// FormatFor maps a file path to its encoding.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".snappy":
		return FormatSnappy, nil
	default:
		return 0, fmt.Errorf("unsupported tree file extension %q", filepath.Ext(path))
	}
}

// Decode parses tree file bytes in the given format and validates the record
// list before building the graph.
func Decode(data []byte, format Format) (*graph.Graph, []graph.ToeConfiguration, error) {
	var file TreeFile
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("decode tree file: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("decode tree file: %w", err)
		}
	case FormatSnappy:
		raw, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, nil, fmt.Errorf("decompress tree file: %w", err)
		}
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, nil, fmt.Errorf("decode tree file: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("unknown tree file format %d", format)
	}

	if err := validation.ValidateRecords(file.Nodes); err != nil {
		return nil, nil, fmt.Errorf("invalid tree file: %w", err)
	}

	nodes := make([]*graph.Node, 0, len(file.Nodes))
	for _, rec := range file.Nodes {
		node, err := graph.NodeFromRecord(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid tree file: %w", err)
		}
		nodes = append(nodes, node)
	}
	g, err := graph.NewGraph(nodes)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid tree file: %w", err)
	}
	return g, file.Configurations, nil
}

// Load reads and decodes a tree file.
func Load(path string) (*graph.Graph, []graph.ToeConfiguration, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read tree file: %w", err)
	}
	return Decode(data, format)
}

// Encode serializes a graph and configuration list in the given format.
func Encode(g *graph.Graph, configs []graph.ToeConfiguration, format Format) ([]byte, error) {
	file := TreeFile{Configurations: configs}
	for _, node := range g.Nodes() {
		file.Nodes = append(file.Nodes, node.ToRecord())
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(file)
	case FormatJSON:
		return json.MarshalIndent(file, "", "  ")
	case FormatSnappy:
		raw, err := json.Marshal(file)
		if err != nil {
			return nil, err
		}
		return snappy.Encode(nil, raw), nil
	default:
		return nil, fmt.Errorf("unknown tree file format %d", format)
	}
}

// Save writes a tree file, choosing the encoding from the extension.
func Save(path string, g *graph.Graph, configs []graph.ToeConfiguration) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(g, configs, format)
	if err != nil {
		return fmt.Errorf("encode tree file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tree file: %w", err)
	}
	return nil
}
