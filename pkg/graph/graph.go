package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Graph is the canonical serialization format for weighted link graphs.
// Edges are undirected: an edge {from, to, weight} relates the unordered
// pair and its orientation carries no meaning.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node identifies one entity to be positioned by the layout engine.
type Node struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge relates an unordered pair of nodes with a positive spring weight.
type Edge struct {
	From   string  `json:"from" bson:"from"`
	To     string  `json:"to" bson:"to"`
	Weight float64 `json:"weight" bson:"weight"`
}

// Names returns the node IDs in declaration order. This is the ordering the
// layout engine sees, so it determines the (deterministic) layout result.
func (g Graph) Names() []string {
	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		names[i] = n.ID
	}
	return names
}

// Validate checks structural constraints: at least one node, unique non-empty
// node IDs, edges referencing declared nodes, and strictly positive weights.
func (g Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("graph has no nodes")
	}

	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		ids[n.ID] = struct{}{}
	}

	for _, e := range g.Edges {
		if _, ok := ids[e.From]; !ok {
			return fmt.Errorf("edge references unknown node %q", e.From)
		}
		if _, ok := ids[e.To]; !ok {
			return fmt.Errorf("edge references unknown node %q", e.To)
		}
		if e.From == e.To {
			return fmt.Errorf("self edge on %q", e.From)
		}
		if e.Weight <= 0 {
			return fmt.Errorf("edge %s–%s has non-positive weight %g", e.From, e.To, e.Weight)
		}
	}
	return nil
}

// Marshal converts a Graph to indented JSON bytes.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes JSON bytes to a Graph and validates it.
func Unmarshal(data []byte) (Graph, error) {
	return readFrom(bytes.NewReader(data))
}

// Write writes a Graph as JSON to an io.Writer.
func Write(g Graph, w io.Writer) error {
	return writeTo(g, w)
}

// WriteFile writes a Graph to a JSON file with 0644 permissions.
func WriteFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(g, f)
}

// Read decodes and validates a JSON graph from an io.Reader.
func Read(r io.Reader) (Graph, error) {
	return readFrom(r)
}

// ReadFile reads a JSON file and returns the decoded, validated Graph.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

func writeTo(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	if err := g.Validate(); err != nil {
		return Graph{}, err
	}
	return g, nil
}
