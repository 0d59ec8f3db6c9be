package docbind

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/reoring/docbind/internal/convert"
)

// nestedEntity resolves how a nested object is represented.
func (b *binding) nestedEntity(obj any) (entity, error) {
	switch {
	case b.def.decorate != nil:
		obj = b.def.decorate(obj)
	case b.def.extend != nil:
		obj = Decorate(obj, b.def.extend)
	case b.def.typ != nil && b.def.typ.schema != nil:
		obj = Decorate(obj, b.def.typ.schema)
	}
	ent, err := resolveEntity(obj)
	if err != nil {
		return entity{}, typeError(b.path, b.def.accessor, err.Error(), err)
	}
	return ent, nil
}

// nestedSchema returns the schema and type name of the nested type, or nil
// for scalar properties.
func (b *binding) nestedSchema() (*Schema, string) {
	if !b.def.IsTyped() {
		return nil, ""
	}
	var s *Schema
	var name string
	switch {
	case b.def.extend != nil:
		s = b.def.extend
	case b.def.typ != nil && b.def.typ.schema != nil:
		s = b.def.typ.schema
	}
	if b.def.typ != nil {
		name = b.def.typ.name
	}
	if s == nil && b.def.typ != nil {
		ent, err := b.nestedEntity(b.def.typ.New())
		if err != nil {
			return nil, ""
		}
		s = ent.schema
	}
	return s, name
}

// nestedWrap is the wrap name declared by the nested type, used as the
// XML tag of nested elements.
func (b *binding) nestedWrap() string {
	s, name := b.nestedSchema()
	if s == nil {
		return ""
	}
	return s.WrapName(name)
}

// nestedNamespace is the XML default namespace declared by the nested type.
func (b *binding) nestedNamespace() string {
	s, _ := b.nestedSchema()
	if s == nil {
		return ""
	}
	return s.Namespace()
}

// tag is the XML tag of the property.
func (b *binding) tag() string { return b.def.Tag(b.nestedWrap()) }

// writeObject runs the nested write pass for obj into fragment. The nested
// wrap is never applied: the containing property places the fragment.
func (b *binding) writeObject(fragment any, obj any, path string) error {
	ent, err := b.nestedEntity(obj)
	if err != nil {
		return err
	}
	return writeEntity(b.ctx, b.format, fragment, ent, b.opts.nested(), path)
}

// readObject determines the target object for fragment and runs the nested
// read pass into it.
//
// Target selection: Sync reuses current(); an Instance hook result is used
// next, falling back to current() and then to a fresh instance; otherwise a
// fresh instance of the sought type (or of the Class hook result).
func (b *binding) readObject(fragment any, current func() any, index int, path string) (any, error) {
	target, err := b.target(fragment, current, index)
	if err != nil {
		return nil, err
	}
	ent, err := b.nestedEntity(target)
	if err != nil {
		return nil, err
	}
	if err := readEntity(b.ctx, b.format, fragment, ent, b.opts.nested(), path); err != nil {
		return nil, err
	}
	return target, nil
}

func (b *binding) target(fragment any, current func() any, index int) (any, error) {
	if b.def.sync {
		if obj := current(); !convert.IsNil(obj) {
			b.log().Debug("sync reuse", zap.String("path", b.path), zap.Int("index", index))
			return obj, nil
		}
	}
	if b.def.instance != nil {
		c := b.call()
		c.Fragment = fragment
		c.Index = index
		obj, err := b.def.instance(c)
		if err != nil {
			return nil, err
		}
		if !convert.IsNil(obj) {
			return obj, nil
		}
		if obj := current(); !convert.IsNil(obj) {
			return obj, nil
		}
	}
	return b.create(fragment, index)
}

func (b *binding) create(fragment any, index int) (any, error) {
	t := b.def.typ
	if b.def.class != nil {
		c := b.call()
		c.Fragment = fragment
		c.Index = index
		ct, err := b.def.class(c)
		if err != nil {
			return nil, err
		}
		if ct != nil {
			t = ct
		}
	}
	if t == nil {
		if b.def.extend != nil {
			return NewRecord(b.def.extend), nil
		}
		return nil, configError(b.path, b.def.accessor, "no type to construct nested objects")
	}
	return t.New(), nil
}

// currentValue returns the property value held by the entity, or nil.
func (b *binding) currentValue() any {
	v, err := b.get()
	if err != nil {
		return nil
	}
	return v
}

// currentItems returns the existing collection elements under Sync.
// Struct elements are addressed so they can be updated in place.
func (b *binding) currentItems() []any {
	if !b.def.sync && b.def.instance == nil {
		return nil
	}
	return convert.ElementRefs(b.currentValue())
}

// currentEntries returns the existing map values under Sync.
func (b *binding) currentEntries() map[string]any {
	if !b.def.sync && b.def.instance == nil {
		return nil
	}
	entries, err := convert.Entries(b.currentValue())
	if err != nil {
		return nil
	}
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out
}

// itemReader decodes one element of a collection. Under Sync the result
// holds exactly as many elements as the document; existing elements are
// paired by position.
type itemReader struct {
	b        *binding
	existing []any
}

func (b *binding) items() *itemReader {
	if !b.def.IsTyped() {
		return &itemReader{b: b}
	}
	return &itemReader{b: b, existing: b.currentItems()}
}

func (r *itemReader) read(i int, fragment any, scalar func() (any, error)) (any, error) {
	path := r.b.path + "/" + strconv.Itoa(i)
	if !r.b.def.IsTyped() {
		raw, err := scalar()
		if err != nil {
			return nil, err
		}
		return r.b.decodeScalar(raw)
	}
	if fragmentIsNull(fragment) {
		return nil, nil
	}
	return r.b.readObject(fragment, func() any {
		if i < len(r.existing) {
			return r.existing[i]
		}
		return nil
	}, i, path)
}

// entryReader decodes one value of a keyed map; existing values are paired
// by key.
type entryReader struct {
	b        *binding
	existing map[string]any
}

func (b *binding) entries() *entryReader {
	if !b.def.IsTyped() {
		return &entryReader{b: b}
	}
	return &entryReader{b: b, existing: b.currentEntries()}
}

func (r *entryReader) read(key string, fragment any, scalar func() (any, error)) (any, error) {
	if !r.b.def.IsTyped() {
		raw, err := scalar()
		if err != nil {
			return nil, err
		}
		return r.b.decodeScalar(raw)
	}
	if fragmentIsNull(fragment) {
		return nil, nil
	}
	return r.b.readObject(fragment, func() any { return r.existing[key] }, -1, r.b.path+"/"+escapePointer(key))
}

// readSingle decodes the fragment of a scalar or nested property.
func (b *binding) readSingle(fragment any, scalar func() (any, error)) (any, error) {
	if !b.def.IsTyped() {
		raw, err := scalar()
		if err != nil {
			return nil, err
		}
		return b.decodeScalar(raw)
	}
	if fragmentIsNull(fragment) {
		return nil, nil
	}
	return b.readObject(fragment, b.currentValue, -1, b.path)
}

// elements lists the values of a collection property for writing.
func (b *binding) elements(v any) ([]any, error) {
	items, err := convert.Elements(v)
	if err != nil {
		return nil, typeError(b.path, b.def.accessor, err.Error(), err)
	}
	return items, nil
}

// pairs lists the entries of a map property for writing, sorted by key
// unless the value keeps its own order.
func (b *binding) pairs(v any) ([]convert.Entry, error) {
	if o, ok := v.(interface{ Keys() []string }); ok {
		if g, ok := v.(interface{ Get(string) (any, bool) }); ok {
			keys := o.Keys()
			out := make([]convert.Entry, 0, len(keys))
			for _, k := range keys {
				val, _ := g.Get(k)
				out = append(out, convert.Entry{Key: k, Value: val})
			}
			return out, nil
		}
	}
	entries, err := convert.Entries(v)
	if err != nil {
		return nil, typeError(b.path, b.def.accessor, err.Error(), err)
	}
	return entries, nil
}
