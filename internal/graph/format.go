package graph

import (
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

// Format is a graph output format.
type Format string

const (
	// FormatDOT is Graphviz DOT, one statement per node and per edge, no edge labels.
	FormatDOT Format = "dot"
	// FormatJSON is a node list plus an edge list of [from, to] identifier pairs.
	FormatJSON Format = "json"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FormatDOT:
		return FormatDOT, nil
	case FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Write serializes g to w. It never modifies g.
func Write(w io.Writer, g *Graph, format Format) error {
	switch format {
	case FormatDOT, "":
		return WriteDOT(w, g, "dependencies")
	case FormatJSON:
		return WriteJSON(w, g)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes g to path, or to standard output when path is "-". A
// failure to flush the file on close is returned.
func WriteFile(path string, g *Graph, format Format) (err error) {
	if path == "-" {
		return Write(os.Stdout, g, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return Write(f, g, format)
}

// WriteDOT writes g in DOT format for graph visualization tools.
func WriteDOT(w io.Writer, g *Graph, name string) error {
	b, err := dot.Marshal(g.g, name, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dot: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write dot: %w", err)
	}
	return nil
}

// JSONGraph is the document written by WriteJSON.
type JSONGraph struct {
	Nodes []JSONNode     `json:"nodes"`
	Edges [][2]string    `json:"edges"`
	Stats JSONGraphStats `json:"stats"`
}

type JSONNode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp,omitempty"`
}

type JSONGraphStats struct {
	Nodes   int                `json:"nodes"`
	Edges   int                `json:"edges"`
	Skipped map[SkipReason]int `json:"skipped,omitempty"`
}

// ToJSONNode converts n into its JSON form.
func ToJSONNode(n *Node) JSONNode {
	return JSONNode{
		ID:        n.Key(),
		Name:      n.Name,
		Version:   n.Version,
		Timestamp: n.Timestamp,
	}
}

// ToJSONGraph converts g into its JSON document form.
func ToJSONGraph(g *Graph) JSONGraph {
	nodes := g.Nodes()
	out := JSONGraph{
		Nodes: make([]JSONNode, 0, len(nodes)),
		Edges: make([][2]string, 0, g.EdgeCount()),
	}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, ToJSONNode(n))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, [2]string{e.From, e.To})
	}
	out.Stats = JSONGraphStats{
		Nodes:   len(out.Nodes),
		Edges:   len(out.Edges),
		Skipped: g.diagnostics.Skipped,
	}
	return out
}

// WriteJSON writes g as an indented JSON document.
func WriteJSON(w io.Writer, g *Graph) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToJSONGraph(g)); err != nil {
		return fmt.Errorf("encode json graph: %w", err)
	}
	return nil
}
