package docbind

import (
	"errors"
	"fmt"

	"github.com/reoring/docbind/hashdoc"
)

func hashStrategy(d *Definition) (strategy, error) {
	if d.content {
		return nil, errors.New("content is only supported in XML")
	}
	if d.hasDescriptors() {
		if !d.key.textual() || !d.value.textual() {
			return nil, fmt.Errorf("descriptors %s/%s are only supported in XML", d.key, d.value)
		}
		return hashDescriptorMap{}, nil
	}
	switch {
	case d.collection:
		return hashCollection{}, nil
	case d.hash:
		return hashMap{}, nil
	}
	return hashProperty{}, nil
}

// hashContainer returns the map holding the property: doc itself or the
// map stored under the wrap key.
func hashContainer(b *binding, doc any, create bool) (*hashdoc.Map, error) {
	m, ok := doc.(*hashdoc.Map)
	if !ok {
		return nil, typeError(b.path, b.def.accessor, fmt.Sprintf("expected an object, got %T", doc), nil)
	}
	if b.def.wrap == "" {
		return m, nil
	}
	if w, ok := m.Get(b.def.wrap); ok && w != nil {
		wm, ok := w.(*hashdoc.Map)
		if !ok {
			return nil, typeError(b.path, b.def.accessor, fmt.Sprintf("wrap %q is not an object", b.def.wrap), nil)
		}
		return wm, nil
	}
	if !create {
		return nil, nil
	}
	wm := hashdoc.New()
	m.Set(b.def.wrap, wm)
	return wm, nil
}

// hashFragment fetches the raw fragment of the property.
func hashFragment(b *binding, doc any) (any, error) {
	m, err := hashContainer(b, doc, false)
	if err != nil || m == nil {
		return fragmentNotFound, err
	}
	raw, ok := m.Get(b.def.Name())
	if !ok {
		return fragmentNotFound, nil
	}
	return raw, nil
}

func hashObject(b *binding, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if _, ok := raw.(*hashdoc.Map); !ok {
		return nil, typeError(b.path, b.def.accessor, fmt.Sprintf("expected an object, got %T", raw), nil)
	}
	return raw, nil
}

// hashValue serializes one value: nested entities become fresh maps,
// scalars go through the coercion hook.
func hashValue(b *binding, v any, path string) (any, error) {
	if !b.def.IsTyped() {
		return b.encodeScalar(v)
	}
	if v == nil {
		return nil, nil
	}
	frag := hashdoc.New()
	if err := b.writeObject(frag, v, path); err != nil {
		return nil, err
	}
	return frag, nil
}

func hashStore(b *binding, doc any, v any) error {
	m, err := hashContainer(b, doc, true)
	if err != nil {
		return err
	}
	m.Set(b.def.Name(), v)
	return nil
}

type hashProperty struct{}

func (hashProperty) read(b *binding, doc any) (any, error) {
	raw, err := hashFragment(b, doc)
	if err != nil || raw == fragmentNotFound {
		return raw, err
	}
	if b.def.IsTyped() {
		if raw, err = hashObject(b, raw); err != nil {
			return nil, err
		}
	}
	return b.readSingle(raw, func() (any, error) { return raw, nil })
}

func (hashProperty) write(b *binding, doc any, v any) error {
	out, err := hashValue(b, v, b.path)
	if err != nil {
		return err
	}
	return hashStore(b, doc, out)
}

type hashCollection struct{}

func (hashCollection) read(b *binding, doc any) (any, error) {
	raw, err := hashFragment(b, doc)
	if err != nil || raw == fragmentNotFound || raw == nil {
		return raw, err
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, typeError(b.path, b.def.accessor, fmt.Sprintf("expected an array, got %T", raw), nil)
	}
	r := b.items()
	out := make([]any, len(list))
	for i, item := range list {
		frag := item
		if b.def.IsTyped() {
			if frag, err = hashObject(b, item); err != nil {
				return nil, err
			}
		}
		if out[i], err = r.read(i, frag, func() (any, error) { return item, nil }); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (hashCollection) write(b *binding, doc any, v any) error {
	if v == nil {
		return hashStore(b, doc, nil)
	}
	items, err := b.elements(v)
	if err != nil {
		return err
	}
	out := make([]any, len(items))
	for i, item := range items {
		if out[i], err = hashValue(b, item, fmt.Sprintf("%s/%d", b.path, i)); err != nil {
			return err
		}
	}
	return hashStore(b, doc, out)
}

type hashMap struct{}

func (hashMap) read(b *binding, doc any) (any, error) {
	raw, err := hashFragment(b, doc)
	if err != nil || raw == fragmentNotFound || raw == nil {
		return raw, err
	}
	m, ok := raw.(*hashdoc.Map)
	if !ok {
		return nil, typeError(b.path, b.def.accessor, fmt.Sprintf("expected an object, got %T", raw), nil)
	}
	r := b.entries()
	out := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		item, _ := m.Get(k)
		frag := item
		if b.def.IsTyped() {
			if frag, err = hashObject(b, item); err != nil {
				return nil, err
			}
		}
		if out[k], err = r.read(k, frag, func() (any, error) { return item, nil }); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (hashMap) write(b *binding, doc any, v any) error {
	if v == nil {
		return hashStore(b, doc, nil)
	}
	pairs, err := b.pairs(v)
	if err != nil {
		return err
	}
	out := hashdoc.New()
	for _, p := range pairs {
		val, err := hashValue(b, p.Value, b.path+"/"+escapePointer(p.Key))
		if err != nil {
			return err
		}
		out.Set(p.Key, val)
	}
	return hashStore(b, doc, out)
}

// hashDescriptorMap stores a map as an array of {key, value} objects.
type hashDescriptorMap struct{}

func (hashDescriptorMap) read(b *binding, doc any) (any, error) {
	raw, err := hashFragment(b, doc)
	if err != nil || raw == fragmentNotFound || raw == nil {
		return raw, err
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, typeError(b.path, b.def.accessor, fmt.Sprintf("expected an array, got %T", raw), nil)
	}
	out := make(map[string]any, len(list))
	for _, item := range list {
		m, ok := item.(*hashdoc.Map)
		if !ok {
			return nil, typeError(b.path, b.def.accessor, fmt.Sprintf("expected an object, got %T", item), nil)
		}
		k, _ := m.Get(b.def.key.Name)
		v, _ := m.Get(b.def.value.Name)
		if out[scalarText(k)], err = b.decodeScalar(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (hashDescriptorMap) write(b *binding, doc any, v any) error {
	if v == nil {
		return hashStore(b, doc, nil)
	}
	pairs, err := b.pairs(v)
	if err != nil {
		return err
	}
	out := make([]any, 0, len(pairs))
	for _, p := range pairs {
		val, err := b.encodeScalar(p.Value)
		if err != nil {
			return err
		}
		item := hashdoc.New()
		item.Set(b.def.key.Name, p.Key)
		item.Set(b.def.value.Name, val)
		out = append(out, item)
	}
	return hashStore(b, doc, out)
}
