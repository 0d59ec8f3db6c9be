package docbind

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind/hashdoc"
	"github.com/reoring/docbind/yamldoc"
)

func yamlStrategy(d *Definition) (strategy, error) {
	if d.content {
		return nil, errors.New("content is only supported in XML")
	}
	if d.hasDescriptors() {
		if !d.key.textual() || !d.value.textual() {
			return nil, fmt.Errorf("descriptors %s/%s are only supported in XML", d.key, d.value)
		}
		return yamlDescriptorMap{}, nil
	}
	switch {
	case d.collection:
		return yamlCollection{}, nil
	case d.hash:
		return yamlMap{}, nil
	}
	return yamlProperty{}, nil
}

func yamlMapping(b *binding, n any) (*yaml.Node, error) {
	node, ok := n.(*yaml.Node)
	if ok {
		node = yamldoc.Resolve(node)
	}
	if !ok || node == nil || node.Kind != yaml.MappingNode {
		return nil, typeError(b.path, b.def.accessor, "expected a mapping, got "+describeYAML(n), nil)
	}
	return node, nil
}

func describeYAML(n any) string {
	if node, ok := n.(*yaml.Node); ok {
		return yamldoc.KindName(node)
	}
	return fmt.Sprintf("%T", n)
}

// yamlContainer returns the mapping holding the property: doc itself or the
// mapping stored under the wrap key.
func yamlContainer(b *binding, doc any, create bool) (*yaml.Node, error) {
	m, err := yamlMapping(b, doc)
	if err != nil {
		return nil, err
	}
	if b.def.wrap == "" {
		return m, nil
	}
	if w, ok := yamldoc.Lookup(m, b.def.wrap); ok && !yamldoc.IsNull(w) {
		return yamlMapping(b, w)
	}
	if !create {
		return nil, nil
	}
	w := yamldoc.Mapping()
	yamldoc.Set(m, b.def.wrap, w)
	return w, nil
}

func yamlFragment(b *binding, doc any) (*yaml.Node, bool, error) {
	m, err := yamlContainer(b, doc, false)
	if err != nil || m == nil {
		return nil, false, err
	}
	n, ok := yamldoc.Lookup(m, b.def.Name())
	return n, ok, nil
}

func yamlStore(b *binding, doc any, n *yaml.Node) error {
	m, err := yamlContainer(b, doc, true)
	if err != nil {
		return err
	}
	yamldoc.Set(m, b.def.Name(), n)
	return nil
}

// yamlScalar decodes a node holding a scalar value. Composite nodes under
// an untyped property decode to plain Go values.
func yamlScalar(n *yaml.Node) func() (any, error) {
	return func() (any, error) {
		if yamldoc.IsNull(n) {
			return nil, nil
		}
		if n.Kind == yaml.ScalarNode {
			return yamldoc.Value(n)
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func yamlObject(b *binding, n *yaml.Node) (any, error) {
	if yamldoc.IsNull(n) {
		return nil, nil
	}
	return yamlMapping(b, n)
}

// yamlValue serializes one value into a node.
func yamlValue(b *binding, v any, path string) (*yaml.Node, error) {
	if b.def.IsTyped() {
		if v == nil {
			return yamldoc.Null(), nil
		}
		frag := yamldoc.Mapping()
		if err := b.writeObject(frag, v, path); err != nil {
			return nil, err
		}
		return frag, nil
	}
	enc, err := b.encodeScalar(v)
	if err != nil {
		return nil, err
	}
	return encodeYAML(b, enc)
}

func encodeYAML(b *binding, v any) (*yaml.Node, error) {
	if v == nil {
		return yamldoc.Null(), nil
	}
	n := &yaml.Node{}
	if err := n.Encode(hashdoc.Plain(v)); err != nil {
		return nil, typeError(b.path, b.def.accessor, err.Error(), err)
	}
	return n, nil
}

type yamlProperty struct{}

func (yamlProperty) read(b *binding, doc any) (any, error) {
	n, ok, err := yamlFragment(b, doc)
	if err != nil || !ok {
		return fragmentNotFound, err
	}
	var frag any = n
	if b.def.IsTyped() {
		if frag, err = yamlObject(b, n); err != nil {
			return nil, err
		}
	}
	return b.readSingle(frag, yamlScalar(n))
}

func (yamlProperty) write(b *binding, doc any, v any) error {
	n, err := yamlValue(b, v, b.path)
	if err != nil {
		return err
	}
	return yamlStore(b, doc, n)
}

type yamlCollection struct{}

func (yamlCollection) read(b *binding, doc any) (any, error) {
	n, ok, err := yamlFragment(b, doc)
	if err != nil || !ok {
		return fragmentNotFound, err
	}
	if yamldoc.IsNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, typeError(b.path, b.def.accessor, "expected a sequence, got "+yamldoc.KindName(n), nil)
	}
	r := b.items()
	items := yamldoc.Items(n)
	out := make([]any, len(items))
	for i, item := range items {
		var frag any = item
		if b.def.IsTyped() {
			if frag, err = yamlObject(b, item); err != nil {
				return nil, err
			}
		}
		if out[i], err = r.read(i, frag, yamlScalar(item)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (yamlCollection) write(b *binding, doc any, v any) error {
	if v == nil {
		return yamlStore(b, doc, yamldoc.Null())
	}
	items, err := b.elements(v)
	if err != nil {
		return err
	}
	seq := yamldoc.Sequence()
	for i, item := range items {
		n, err := yamlValue(b, item, fmt.Sprintf("%s/%d", b.path, i))
		if err != nil {
			return err
		}
		seq.Content = append(seq.Content, n)
	}
	return yamlStore(b, doc, seq)
}

type yamlMap struct{}

func (yamlMap) read(b *binding, doc any) (any, error) {
	n, ok, err := yamlFragment(b, doc)
	if err != nil || !ok {
		return fragmentNotFound, err
	}
	if yamldoc.IsNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, typeError(b.path, b.def.accessor, "expected a mapping, got "+yamldoc.KindName(n), nil)
	}
	r := b.entries()
	entries := yamldoc.Entries(n)
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		var frag any = e.Value
		if b.def.IsTyped() {
			if frag, err = yamlObject(b, e.Value); err != nil {
				return nil, err
			}
		}
		if out[e.Key], err = r.read(e.Key, frag, yamlScalar(e.Value)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (yamlMap) write(b *binding, doc any, v any) error {
	if v == nil {
		return yamlStore(b, doc, yamldoc.Null())
	}
	pairs, err := b.pairs(v)
	if err != nil {
		return err
	}
	m := yamldoc.Mapping()
	for _, p := range pairs {
		n, err := yamlValue(b, p.Value, b.path+"/"+escapePointer(p.Key))
		if err != nil {
			return err
		}
		yamldoc.Set(m, p.Key, n)
	}
	return yamlStore(b, doc, m)
}

// yamlDescriptorMap stores a map as a sequence of {key, value} mappings.
type yamlDescriptorMap struct{}

func (yamlDescriptorMap) read(b *binding, doc any) (any, error) {
	n, ok, err := yamlFragment(b, doc)
	if err != nil || !ok {
		return fragmentNotFound, err
	}
	if yamldoc.IsNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, typeError(b.path, b.def.accessor, "expected a sequence, got "+yamldoc.KindName(n), nil)
	}
	items := yamldoc.Items(n)
	out := make(map[string]any, len(items))
	for _, item := range items {
		m, err := yamlMapping(b, item)
		if err != nil {
			return nil, err
		}
		var key string
		if kn, ok := yamldoc.Lookup(m, b.def.key.Name); ok {
			key = kn.Value
		}
		var raw any
		if vn, ok := yamldoc.Lookup(m, b.def.value.Name); ok {
			if raw, err = yamlScalar(vn)(); err != nil {
				return nil, err
			}
		}
		if out[key], err = b.decodeScalar(raw); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (yamlDescriptorMap) write(b *binding, doc any, v any) error {
	if v == nil {
		return yamlStore(b, doc, yamldoc.Null())
	}
	pairs, err := b.pairs(v)
	if err != nil {
		return err
	}
	seq := yamldoc.Sequence()
	for _, p := range pairs {
		enc, err := b.encodeScalar(p.Value)
		if err != nil {
			return err
		}
		val, err := encodeYAML(b, enc)
		if err != nil {
			return err
		}
		keyNode, err := encodeYAML(b, p.Key)
		if err != nil {
			return err
		}
		m := yamldoc.Mapping()
		yamldoc.Set(m, b.def.key.Name, keyNode)
		yamldoc.Set(m, b.def.value.Name, val)
		seq.Content = append(seq.Content, m)
	}
	return yamlStore(b, doc, seq)
}
