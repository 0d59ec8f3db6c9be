// Package yamldoc is the YAML document adapter: constructors for scalar,
// sequence and mapping nodes and ordered access to mapping entries on top of
// gopkg.in/yaml.v3 nodes.
package yamldoc

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when parsing input without any YAML node.
var ErrEmptyDocument = errors.New("yamldoc: empty document")

// Parse decodes the first YAML document in data and returns its root node.
func Parse(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, ErrEmptyDocument
		}
		return doc.Content[0], nil
	}
	if doc.Kind == 0 {
		return nil, ErrEmptyDocument
	}
	return &doc, nil
}

// Render encodes n as a YAML document with the given indentation (0 keeps
// the yaml.v3 default of 4).
func Render(n *yaml.Node, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(n); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Mapping returns an empty mapping node.
func Mapping() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"} }

// Sequence returns a sequence node holding items.
func Sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

// Null returns an explicit null scalar.
func Null() *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"} }

// Scalar encodes a Go scalar into a scalar node.
func Scalar(v any) (*yaml.Node, error) {
	if v == nil {
		return Null(), nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("yamldoc: %T does not encode to a scalar", v)
	}
	return n, nil
}

// Value decodes a scalar node into a Go value (string, int, float64, bool,
// time.Time or nil depending on the resolved tag).
func Value(n *yaml.Node) (any, error) {
	n = Resolve(n)
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("yamldoc: expected scalar, got %s", KindName(n))
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// IsNull reports whether n is a null scalar.
func IsNull(n *yaml.Node) bool {
	n = Resolve(n)
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// Resolve follows alias nodes.
func Resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// Lookup returns the value node stored under key in a mapping node.
func Lookup(mapping *yaml.Node, key string) (*yaml.Node, bool) {
	mapping = Resolve(mapping)
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return Resolve(mapping.Content[i+1]), true
		}
	}
	return nil, false
}

// Set stores value under key, replacing an existing entry in place or
// appending a new one.
func Set(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

// Entry is one key/value pair of a mapping node.
type Entry struct {
	Key   string
	Value *yaml.Node
}

// Entries lists the pairs of a mapping node in document order.
func Entries(mapping *yaml.Node) []Entry {
	mapping = Resolve(mapping)
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]Entry, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		out = append(out, Entry{Key: mapping.Content[i].Value, Value: Resolve(mapping.Content[i+1])})
	}
	return out
}

// Items lists the children of a sequence node.
func Items(seq *yaml.Node) []*yaml.Node {
	seq = Resolve(seq)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*yaml.Node, len(seq.Content))
	for i, c := range seq.Content {
		out[i] = Resolve(c)
	}
	return out
}

// KindName names the kind of n for error messages.
func KindName(n *yaml.Node) string {
	if n == nil {
		return "nothing"
	}
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
