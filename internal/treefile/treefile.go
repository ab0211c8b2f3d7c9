// Package treefile reads and writes trees as JSON or YAML documents.
//
// A document is a nested node:
//
//	label: root
//	children:
//	  - label: a
//	    selected: true
//	  - id: 7
//	    label: b
//	    attrs: {size: 3}
//
// Nodes without an id are numbered in pre-order, skipping ids used
// explicitly elsewhere in the document.
package treefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/arbor"
)

// Format is a document encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ErrUnknownFormat is returned for file extensions other than .json, .yaml
// and .yml.
var ErrUnknownFormat = errors.New("treefile: unknown format")

// Document is the serialized form of one node.
type Document struct {
	ID       *int64             `json:"id,omitempty" yaml:"id,omitempty"`
	Label    string             `json:"label" yaml:"label"`
	Selected bool               `json:"selected,omitempty" yaml:"selected,omitempty"`
	Attrs    map[string]float64 `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []*Document        `json:"children,omitempty" yaml:"children,omitempty"`
}

// FormatOf returns the format for a path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Load reads and parses the tree at path.
func Load(path string) (*arbor.Tree, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("treefile: %w", err)
	}
	t, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("treefile: %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a document and builds a validated tree.
func Parse(data []byte, format Format) (*arbor.Tree, error) {
	var doc Document
	switch format {
	case JSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return Build(&doc)
}

// Build converts a document into a tree. Cycles cannot be expressed in a
// document, but shared pointers built in code are rejected by arbor.NewTree.
func Build(doc *Document) (*arbor.Tree, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", arbor.ErrInvalidTree)
	}
	used := make(map[int64]bool)
	collectIDs(doc, used, make(map[*Document]bool))

	var next int64
	seen := make(map[*Document]bool)
	var build func(d *Document) (*arbor.Node, error)
	build = func(d *Document) (*arbor.Node, error) {
		if d == nil {
			return nil, fmt.Errorf("%w: null child", arbor.ErrInvalidTree)
		}
		if seen[d] {
			return nil, fmt.Errorf("%w: document node %q appears twice", arbor.ErrInvalidTree, d.Label)
		}
		seen[d] = true

		n := &arbor.Node{Label: d.Label, Selected: d.Selected, Attrs: d.Attrs}
		if d.ID != nil {
			n.ID = arbor.NodeID(*d.ID)
		} else {
			for used[next] {
				next++
			}
			n.ID = arbor.NodeID(next)
			used[next] = true
		}
		for _, c := range d.Children {
			cn, err := build(c)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, cn)
		}
		return n, nil
	}
	root, err := build(doc)
	if err != nil {
		return nil, err
	}
	return arbor.NewTree(root)
}

func collectIDs(d *Document, used map[int64]bool, seen map[*Document]bool) {
	if d == nil || seen[d] {
		return
	}
	seen[d] = true
	if d.ID != nil {
		used[*d.ID] = true
	}
	for _, c := range d.Children {
		collectIDs(c, used, seen)
	}
}

// FromTree converts a tree back into a document with explicit ids.
func FromTree(t *arbor.Tree) *Document {
	var conv func(n *arbor.Node) *Document
	conv = func(n *arbor.Node) *Document {
		id := int64(n.ID)
		d := &Document{ID: &id, Label: n.Label, Selected: n.Selected, Attrs: n.Attrs}
		for _, c := range n.Children {
			d.Children = append(d.Children, conv(c))
		}
		return d
	}
	return conv(t.Root())
}

// Encode writes t in the given format.
func Encode(t *arbor.Tree, format Format) ([]byte, error) {
	doc := FromTree(t)
	switch format {
	case JSON:
		return json.MarshalIndent(doc, "", "  ")
	case YAML:
		return yaml.Marshal(doc)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Balanced returns a complete tree of the given depth where every inner
// node has fanout children. Labels are dotted paths such as "root.0.2".
func Balanced(depth, fanout int) (*arbor.Tree, error) {
	if depth < 0 || fanout < 0 {
		return nil, fmt.Errorf("%w: depth %d fanout %d", arbor.ErrInvalidTree, depth, fanout)
	}
	var next arbor.NodeID
	var grow func(label string, d int) *arbor.Node
	grow = func(label string, d int) *arbor.Node {
		n := &arbor.Node{ID: next, Label: label}
		next++
		if d == depth {
			return n
		}
		for i := 0; i < fanout; i++ {
			n.Children = append(n.Children, grow(fmt.Sprintf("%s.%d", label, i), d+1))
		}
		return n
	}
	return arbor.NewTree(grow("root", 0))
}
